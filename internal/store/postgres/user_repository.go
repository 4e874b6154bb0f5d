// Copyright 2026 The FleetFlow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetflow/fleetflow/internal/identity"
	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements identity.UserRepository.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, name, role, password_hash, active, serial_number, created_at, updated_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, email, username, name, role, password_hash, active, serial_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID, user.Email, user.Username, user.Name, string(user.Role),
		user.PasswordHash, user.Active, user.SerialNumber, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, matched case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByUsername retrieves a user by username, matched case-insensitively.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*identity.User, error) {
	var user identity.User
	var role string

	err := r.db.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Username, &user.Name, &role,
		&user.PasswordHash, &user.Active, &user.SerialNumber,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = rbac.Role(role)
	return &user, nil
}

// SetActive flips the suspension flag.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users SET active = $2, updated_at = $3 WHERE id = $1
	`, id, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateRole changes the user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role rbac.Role) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = $3 WHERE id = $1
	`, id, string(role), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// List returns all users, newest first.
func (r *UserRepository) List(ctx context.Context) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		var user identity.User
		var role string
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Username, &user.Name, &role,
			&user.PasswordHash, &user.Active, &user.SerialNumber,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role = rbac.Role(role)
		users = append(users, &user)
	}
	return users, rows.Err()
}
