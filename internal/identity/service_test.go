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
	"strings"
	"testing"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/rbac"
)

// MockUserRepository is a simple in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]*User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*User)}
}

func (m *MockUserRepository) Create(_ context.Context, user *User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepository) SetActive(_ context.Context, id string, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (m *MockUserRepository) UpdateRole(_ context.Context, id string, role rbac.Role) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *MockUserRepository) List(_ context.Context) ([]*User, error) {
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func newTestService() (*Service, *MockUserRepository) {
	repo := NewMockUserRepository()
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)
	return NewService(repo, hasher, audit.NewSlogLogger()), repo
}

func mustRegister(t *testing.T, s *Service, email, username string, role rbac.Role) *User {
	t.Helper()
	user, err := s.Register(context.Background(), RegisterInput{
		FullName: "Test User",
		Username: username,
		Email:    email,
		Password: "SecurePassword123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	return user
}

// TestPurpose: Validates the authentication flow including success, wrong
// password, unknown email and suspension.
// Scope: Unit Test
// Security: Credential verification and enumeration resistance
// Expected: Unknown email and wrong password are indistinguishable
// (same error value); suspension surfaces only for confirmed identities.
// Test Case ID: IDN-01
func TestIdentity_Service_Authenticate(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()

	user := mustRegister(t, s, "test@fleetflow.com", "tester", rbac.RoleDispatcher)

	// Success
	got, err := s.Authenticate(ctx, "test@fleetflow.com", "SecurePassword123")
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, got.ID)
	}

	// Email lookup is case-insensitive
	if _, err := s.Authenticate(ctx, "TEST@FleetFlow.com", "SecurePassword123"); err != nil {
		t.Errorf("expected case-insensitive email match, got %v", err)
	}

	// Wrong password
	_, wrongPassErr := s.Authenticate(ctx, "test@fleetflow.com", "WrongPassword")
	if wrongPassErr != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", wrongPassErr)
	}

	// Unknown email: the SAME error value as wrong password
	_, unknownErr := s.Authenticate(ctx, "ghost@fleetflow.com", "SecurePassword123")
	if unknownErr != wrongPassErr {
		t.Errorf("unknown email and wrong password must be indistinguishable: %v vs %v", unknownErr, wrongPassErr)
	}

	// Suspension: distinct error, but only with the correct password
	repo.users[user.ID].Active = false
	_, err = s.Authenticate(ctx, "test@fleetflow.com", "SecurePassword123")
	if err != ErrAccountSuspended {
		t.Errorf("expected ErrAccountSuspended, got %v", err)
	}
	_, err = s.Authenticate(ctx, "test@fleetflow.com", "WrongPassword")
	if err != ErrInvalidCredentials {
		t.Errorf("suspended account with wrong password must still report ErrInvalidCredentials, got %v", err)
	}
}

// TestPurpose: Validates registration input checks and duplicate handling.
// Scope: Unit Test
// Security: Input validation and unique constraint enforcement
// Expected: Typed errors for each rejected field; ErrUserAlreadyExists on
// case-insensitive email or username collisions.
// Test Case ID: IDN-02
func TestIdentity_Service_Register_Validation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	base := RegisterInput{
		FullName: "New User",
		Username: "newuser",
		Email:    "new@fleetflow.com",
		Password: "LongEnough123",
		Role:     rbac.RoleFinance,
	}

	cases := []struct {
		name   string
		mutate func(in *RegisterInput)
		want   error
	}{
		{"missing name", func(in *RegisterInput) { in.FullName = "" }, ErrMissingField},
		{"missing username", func(in *RegisterInput) { in.Username = "" }, ErrMissingField},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, ErrMissingField},
		{"bad role", func(in *RegisterInput) { in.Role = "superuser" }, ErrInvalidRole},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		{"short password", func(in *RegisterInput) { in.Password = "short1" }, ErrWeakPassword},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		if _, err := s.Register(ctx, in); err != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := s.Register(ctx, base); err != nil {
		t.Fatalf("valid registration failed: %v", err)
	}

	// Duplicate email, different case
	dup := base
	dup.Username = "otheruser"
	dup.Email = "NEW@fleetflow.com"
	if _, err := s.Register(ctx, dup); err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists for email collision, got %v", err)
	}

	// Duplicate username, different email
	dup = base
	dup.Email = "second@fleetflow.com"
	dup.Username = "NewUser"
	if _, err := s.Register(ctx, dup); err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists for username collision, got %v", err)
	}
}

// TestPurpose: Validates admin-driven role change and suspension, the two
// mutations that the refresh endpoint later observes.
// Scope: Unit Test
// Expected: ChangeRole rejects unknown roles; SetActive flips the flag.
// Test Case ID: IDN-03
func TestIdentity_Service_AdminMutations(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()

	user := mustRegister(t, s, "driver-ops@fleetflow.com", "driverops", rbac.RoleDispatcher)

	if err := s.ChangeRole(ctx, "usr_admin", user.ID, "superuser"); err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
	if err := s.ChangeRole(ctx, "usr_admin", user.ID, rbac.RoleFleetManager); err != nil {
		t.Fatalf("ChangeRole failed: %v", err)
	}
	if repo.users[user.ID].Role != rbac.RoleFleetManager {
		t.Errorf("role not updated, got %q", repo.users[user.ID].Role)
	}

	if err := s.SetActive(ctx, "usr_admin", user.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if repo.users[user.ID].Active {
		t.Error("user should be suspended")
	}
}

// TestPurpose: Validates the Argon2id hasher round trip and its encoded format.
// Scope: Unit Test
// Security: Salted one-way password storage
// Expected: Correct password verifies; wrong password does not; two hashes
// of the same password differ (random salt).
// Test Case ID: IDN-04
func TestIdentity_PasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)

	h1, err := hasher.Hash("CorrectHorse9")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(h1, "$argon2id$") {
		t.Errorf("unexpected hash format: %s", h1)
	}

	ok, err := hasher.Verify("CorrectHorse9", h1)
	if err != nil || !ok {
		t.Errorf("expected verify success, got ok=%v err=%v", ok, err)
	}

	ok, err = hasher.Verify("WrongHorse9", h1)
	if err != nil || ok {
		t.Errorf("expected verify failure, got ok=%v err=%v", ok, err)
	}

	h2, err := hasher.Hash("CorrectHorse9")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password must differ")
	}

	if _, err := hasher.Verify("anything", "not-a-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
}
