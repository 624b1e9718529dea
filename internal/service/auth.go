package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// AuthService handles registration and login. New students start with
// an initial credit balance so the prepaid payment path works out of
// the box.
type AuthService struct {
	users         storage.UserStore
	initialCredit float64
}

func NewAuthService(users storage.UserStore, initialCredit float64) *AuthService {
	return &AuthService{users: users, initialCredit: initialCredit}
}

func (s *AuthService) Register(ctx context.Context, login, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:            model.NewID(),
		Login:         login,
		PasswordHash:  hash,
		CreditBalance: s.initialCredit,
		CreatedAt:     time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrLoginTaken) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Balance returns the user's current credit balance.
func (s *AuthService) Balance(ctx context.Context, userID string) (float64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("%w: user %s", ErrEntityNotFound, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("get user: %w", err)
	}
	return user.CreditBalance, nil
}

// TopUp adds credit to the user's balance.
func (s *AuthService) TopUp(ctx context.Context, userID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: top-up amount must be positive", ErrInvalidRequest)
	}
	err := s.users.AddCredit(ctx, userID, amount)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: user %s", ErrEntityNotFound, userID)
	}
	return err
}
