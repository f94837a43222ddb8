package database

import (
	"context"

	"github.com/google/uuid"
)

// CreateUser creates a new user, assigning an id when absent
func (d *DB) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(user).Error
}

// GetUserByEmail retrieves a user by email
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := d.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by id
func (d *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user
func (d *DB) UpdateUser(ctx context.Context, user *User) error {
	return d.db.WithContext(ctx).Save(user).Error
}
