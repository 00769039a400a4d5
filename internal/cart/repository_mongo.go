package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

// CreateIndexes enforces one cart per owner.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Get(ctx context.Context, ownerID int) (Cart, error) {
	var c Cart
	err := m.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("find cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

func (m *MongoRepository) Save(ctx context.Context, c Cart) (Cart, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	if c.Version == 0 {
		c.Version = 1
		c.CreatedAt = now
		c.UpdatedAt = now
		if _, err := m.collection.InsertOne(ctx, c); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return Cart{}, ErrVersionConflict
			}
			return Cart{}, fmt.Errorf("insert cart: %w", err)
		}
		return c, nil
	}

	filter := bson.M{"owner_id": c.OwnerID, "version": c.Version}
	update := bson.M{
		"$set": bson.M{
			"items":       c.Items,
			"gift_box_id": c.GiftBoxID,
			"updated_at":  now,
		},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var saved Cart
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Cart{}, ErrVersionConflict
	}
	if err != nil {
		return Cart{}, fmt.Errorf("update cart: %w", err)
	}
	return saved, nil
}

func (m *MongoRepository) Delete(ctx context.Context, ownerID int) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepository) DeleteIfVersion(ctx context.Context, ownerID int, version int64) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID, "version": version})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if res.DeletedCount > 0 {
		return nil
	}

	n, err := m.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("count carts: %w", err)
	}
	if n > 0 {
		return ErrVersionConflict
	}
	return ErrNotFound
}
