package user

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo   Repository
	tokens *Tokens
}

func NewService(repo Repository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

func (s *Service) GetByID(ctx context.Context, id int) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create stores a user as given, hashing the password unless it already is
// a bcrypt hash. Used for seeding admins; self-registration goes through
// Register.
func (s *Service) Create(ctx context.Context, u User) (User, error) {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.Password != "" && !looksLikeBcrypt(u.Password) {
		hashed, err := hashPassword(u.Password)
		if err != nil {
			return User{}, err
		}
		u.Password = hashed
	}
	return s.repo.Create(ctx, u)
}

// Register creates a customer account and returns it with a session token.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, string, error) {
	email = strings.TrimSpace(email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, "", ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, "", err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return User{}, "", err
	}

	created, err := s.repo.Create(ctx, User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashed,
		Role:     RoleCustomer,
	})
	if err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return User{}, "", err
	}
	return sanitizeUser(created), token, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return User{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return User{}, "", err
	}
	return sanitizeUser(u), token, nil
}

// ForgotPassword returns a reset token for the account with this email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	return s.tokens.IssueReset(u)
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	id, err := s.tokens.ParseReset(resetToken)
	if err != nil {
		return err
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hashed)
}

// Lookup returns the public summaries of the given users, keyed by id.
// Unknown ids are absent from the map.
func (s *Service) Lookup(ctx context.Context, ids []int) (map[int]Summary, error) {
	users, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Summary, len(users))
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func looksLikeBcrypt(value string) bool {
	return len(value) > 4 && value[0:2] == "$2"
}
