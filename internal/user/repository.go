package user

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"doorman/infrastructure"
)

// Repository is the transactional surface the rest of the service mutates
// users through. Mutate serializes concurrent writers on the row lock, so a
// caller never observes a half-applied transition.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Mutate(ctx context.Context, id uuid.UUID, fn func(*User) error) (*User, error)
}

type repository struct {
	*sql.DB
	saver    Saver
	provider Provider
	updater  Updater
}

func NewRepository(db *sql.DB, saver Saver, provider Provider, updater Updater) Repository {
	return &repository{
		DB:       db,
		saver:    saver,
		provider: provider,
		updater:  updater,
	}
}

func (r *repository) Create(ctx context.Context, user *User) (*User, error) {
	err := infrastructure.WithTransaction(r.DB, ctx, func(tx *sql.Tx) error {
		return r.saver.SaveUser(tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.provider.UserByUsername(username)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.provider.UserByEmail(email)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.provider.UserByID(id)
}

func (r *repository) List(ctx context.Context) ([]*User, error) {
	return r.provider.Users()
}

func (r *repository) Mutate(ctx context.Context, id uuid.UUID, fn func(*User) error) (*User, error) {
	var mutated *User
	err := infrastructure.WithTransaction(r.DB, ctx, func(tx *sql.Tx) error {
		user, err := r.updater.LockUser(tx, id)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		if err := r.updater.UpdateUser(tx, user); err != nil {
			return err
		}
		mutated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mutated, nil
}
