package user

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	SessionTTL = 7 * 24 * time.Hour
	ResetTTL   = 15 * time.Minute

	claimUserID  = "user_id"
	claimRole    = "role"
	claimPurpose = "purpose"
	purposeReset = "reset"
)

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// Tokens issues and verifies HS256 tokens signed with one shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue returns a session token carrying the user's id and role.
func (t *Tokens) Issue(u User) (string, error) {
	return t.sign(jwt.MapClaims{
		claimUserID: u.ID,
		claimRole:   u.Role,
		"exp":       t.now().Add(SessionTTL).Unix(),
	})
}

// IssueReset returns a short-lived token only accepted by ParseReset.
func (t *Tokens) IssueReset(u User) (string, error) {
	return t.sign(jwt.MapClaims{
		claimUserID:  u.ID,
		claimPurpose: purposeReset,
		"exp":        t.now().Add(ResetTTL).Unix(),
	})
}

func (t *Tokens) ParseReset(raw string) (int, error) {
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidResetToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims[claimPurpose] != purposeReset {
		return 0, ErrInvalidResetToken
	}
	id, ok := intClaim(claims[claimUserID])
	if !ok {
		return 0, ErrInvalidResetToken
	}
	return id, nil
}

func (t *Tokens) sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func intClaim(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil
	default:
		return 0, false
	}
}
