package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
)

// CreateUser creates a new user. Usernames are unique.
func CreateUser(ctx context.Context, s *kv.Store, clk clock.Clock, username, email, passwordHash, role string) (*model.User, error) {
	if username == "" || passwordHash == "" {
		return nil, fmt.Errorf("%w: username and password required", model.ErrValidation)
	}
	if role != model.RoleAdmin && role != model.RoleModerator && role != model.RoleUser {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}

	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    clk.Now(),
	}

	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var users []model.User
		if err := tx.Get(keyUsers, &users); err != nil {
			return err
		}
		for _, existing := range users {
			if existing.Username == username {
				return fmt.Errorf("%w: username %q already taken", model.ErrValidation, username)
			}
		}
		users = append(users, u)
		return tx.Put(keyUsers, users)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, s *kv.Store, id string) (*model.User, error) {
	var users []model.User
	if err := s.Get(ctx, keyUsers, &users); err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// GetUserByUsername returns a user by username.
func GetUserByUsername(ctx context.Context, s *kv.Store, username string) (*model.User, error) {
	var users []model.User
	if err := s.Get(ctx, keyUsers, &users); err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}

// ListUsers returns all users.
func ListUsers(ctx context.Context, s *kv.Store) ([]model.User, error) {
	var users []model.User
	if err := s.Get(ctx, keyUsers, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UpdateUser applies fn to the user in place.
func UpdateUser(ctx context.Context, s *kv.Store, id string, fn func(u *model.User) error) (*model.User, error) {
	var out *model.User
	err := s.WithTx(ctx, func(tx *kv.Tx) error {
		var users []model.User
		if err := tx.Get(keyUsers, &users); err != nil {
			return err
		}
		for i := range users {
			if users[i].ID == id {
				if err := fn(&users[i]); err != nil {
					return err
				}
				cp := users[i]
				out = &cp
				return tx.Put(keyUsers, users)
			}
		}
		return model.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
