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

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/fleetflow/fleetflow/internal/rbac"
)

// Domain errors
var (
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists covers both email and username collisions;
	// the caller does not learn which field collided.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for unknown email AND for a
	// wrong password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountSuspended is only returned after the password has been
	// verified; at that point enumeration is no longer a concern.
	ErrAccountSuspended = errors.New("account is suspended")

	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidRole  = errors.New("invalid role")
	ErrWeakPassword = errors.New("password does not meet security requirements")
	ErrMissingField = errors.New("required field missing")
)

// User is an identity record owned by the backing credential store.
// Users are never physically deleted; suspension flips Active to false.
type User struct {
	ID           string
	Email        string
	Username     string
	Name         string
	Role         rbac.Role
	PasswordHash string
	Active       bool
	SerialNumber string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository is the contract the auth subsystem requires from the
// backing store. One implementation per technology: Postgres in
// production, in-memory for tests and local development.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by its opaque stable identifier.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email, matched case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by username, matched case-insensitively.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// SetActive flips the suspension flag.
	SetActive(ctx context.Context, id string, active bool) error

	// UpdateRole changes the user's role (admin-driven only).
	UpdateRole(ctx context.Context, id string, role rbac.Role) error

	// List returns all users, newest first.
	List(ctx context.Context) ([]*User, error)
}
