package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
)

// UserService covers balance lookups and admin balance management.
type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Ensure creates or refreshes the user row for a chat member.
func (s *UserService) Ensure(ctx context.Context, userID int64, username string) error {
	return s.users.Upsert(ctx, entities.NewUser(userID, username))
}

// Balance returns a user's souls balance; a user who never interacted has
// zero.
func (s *UserService) Balance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get user: %w", err)
	}

	return user.Souls, nil
}

// List returns every known user ordered by balance.
func (s *UserService) List(ctx context.Context) ([]*entities.User, error) {
	return s.users.ListAll(ctx)
}

// SetBalance overwrites a user's balance from the admin panel.
func (s *UserService) SetBalance(ctx context.Context, userID, souls int64) error {
	if souls < 0 {
		return &ValidationError{Reason: "balance must not be negative"}
	}

	err := s.users.SetSouls(ctx, userID, souls)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}

	return err
}
