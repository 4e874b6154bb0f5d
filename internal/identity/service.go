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
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/google/uuid"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements credential verification and user provisioning on
// top of a UserRepository. It is the only component that reads
// password hashes.
type Service struct {
	repo        UserRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates an identity service.
func NewService(repo UserRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Authenticate verifies email+password and returns the user record.
// Unknown email and wrong password both yield ErrInvalidCredentials so
// that responses cannot be used to enumerate accounts. The suspension
// check runs only after the password verified.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: "user",
			Metadata: map[string]any{"reason": "invalid_credentials"},
		})
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  user.ID,
			Resource: "user",
			Metadata: map[string]any{"reason": "account_suspended"},
		})
		return nil, ErrAccountSuspended
	}

	return user, nil
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FullName     string
	Username     string
	Email        string
	Password     string
	Role         rbac.Role
	SerialNumber string
}

// Register validates the input, hashes the password and creates the
// user. New accounts start active.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.FullName == "" || in.Username == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrMissingField
	}
	if !rbac.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if existing, err := s.repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if existing, err := s.repo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           "usr_" + uuid.NewString(),
		Email:        strings.ToLower(in.Email),
		Username:     strings.ToLower(in.Username),
		Name:         in.FullName,
		Role:         in.Role,
		PasswordHash: hash,
		Active:       true,
		SerialNumber: in.SerialNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserRegistered,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{"email": user.Email, "role": string(user.Role)},
	})

	return user, nil
}

// GetByID fetches the current user state. The refresh endpoint relies
// on this to observe suspensions and role changes that happened after
// the refresh token was issued.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all users for the admin endpoints.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// SetActive suspends or reinstates a user. Suspension takes effect at
// the next refresh or re-login; outstanding access tokens stay valid
// until they expire.
func (s *Service) SetActive(ctx context.Context, actorID, userID string, active bool) error {
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserSuspended,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID, "active": active},
	})
	return nil
}

// ChangeRole updates a user's role. Admin-driven only; the guard
// enforces that before this is reachable.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID string, role rbac.Role) error {
	if !rbac.ValidRole(role) {
		return ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleChanged,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID, "role": string(role)},
	})
	return nil
}
