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

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/fleet"
	"github.com/fleetflow/fleetflow/internal/identity"
	"github.com/fleetflow/fleetflow/internal/observability/metrics"
	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/fleetflow/fleetflow/internal/store/memory"
	"github.com/fleetflow/fleetflow/internal/token"
)

// fakeFleetRepo is an in-memory fleet.Repository for handler tests.
type fakeFleetRepo struct {
	vehicles  []*fleet.Vehicle
	trips     []*fleet.Trip
	drivers   []*fleet.Driver
	logs      []*fleet.MaintenanceLog
	expenses  []*fleet.Expense
	incidents []*fleet.Incident
}

func (f *fakeFleetRepo) ListVehicles(ctx context.Context) ([]*fleet.Vehicle, error) {
	return f.vehicles, nil
}

func (f *fakeFleetRepo) CreateVehicle(ctx context.Context, v *fleet.Vehicle) error {
	f.vehicles = append(f.vehicles, v)
	return nil
}

func (f *fakeFleetRepo) RetireVehicle(ctx context.Context, id string) error {
	for _, v := range f.vehicles {
		if v.ID == id {
			v.Status = fleet.VehicleRetired
			return nil
		}
	}
	return fleet.ErrNotFound
}

func (f *fakeFleetRepo) ListTrips(ctx context.Context) ([]*fleet.Trip, error) { return f.trips, nil }

func (f *fakeFleetRepo) CreateTrip(ctx context.Context, t *fleet.Trip) error {
	f.trips = append(f.trips, t)
	return nil
}

func (f *fakeFleetRepo) ListDrivers(ctx context.Context) ([]*fleet.Driver, error) {
	return f.drivers, nil
}

func (f *fakeFleetRepo) SuspendDriver(ctx context.Context, id string) error {
	for _, d := range f.drivers {
		if d.ID == id {
			d.Suspended = true
			return nil
		}
	}
	return fleet.ErrNotFound
}

func (f *fakeFleetRepo) ListMaintenance(ctx context.Context) ([]*fleet.MaintenanceLog, error) {
	return f.logs, nil
}

func (f *fakeFleetRepo) CreateMaintenance(ctx context.Context, m *fleet.MaintenanceLog) error {
	f.logs = append(f.logs, m)
	return nil
}

func (f *fakeFleetRepo) ListExpenses(ctx context.Context) ([]*fleet.Expense, error) {
	return f.expenses, nil
}

func (f *fakeFleetRepo) CreateExpense(ctx context.Context, e *fleet.Expense) error {
	f.expenses = append(f.expenses, e)
	return nil
}

func (f *fakeFleetRepo) SetExpenseStatus(ctx context.Context, id, status, approvedBy string) error {
	for _, e := range f.expenses {
		if e.ID == id {
			e.Status = status
			e.ApprovedBy = approvedBy
			return nil
		}
	}
	return fleet.ErrNotFound
}

func (f *fakeFleetRepo) ListIncidents(ctx context.Context) ([]*fleet.Incident, error) {
	return f.incidents, nil
}

func (f *fakeFleetRepo) CreateIncident(ctx context.Context, i *fleet.Incident) error {
	f.incidents = append(f.incidents, i)
	return nil
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	users   *memory.UserRepository
	tokens  *token.Service
	fleet   *fakeFleetRepo
}

// newTestEnv wires a handler against in-memory stores. Hasher params
// are deliberately small to keep the suite fast.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepository()
	hasher := identity.NewPasswordHasher(8*1024, 1, 1, 16, 32)
	auditLogger := audit.NewSlogLogger()
	identityService := identity.NewService(users, hasher, auditLogger)

	tokens := token.NewService(
		[]byte("test-access-secret"),
		[]byte("test-refresh-secret"),
		8*time.Hour,
		168*time.Hour,
	)

	meter, err := metrics.New(context.Background(), metrics.Config{Enabled: false}, "test")
	require.NoError(t, err)

	fleetRepo := &fakeFleetRepo{}
	h := NewHandler(identityService, fleetRepo, tokens, auditLogger, meter, false)

	return &testEnv{
		handler: h,
		router:  NewRouter(h, NewRateLimiter(1000, 1000)),
		users:   users,
		tokens:  tokens,
		fleet:   fleetRepo,
	}
}

// seedUser registers a user directly through the identity service and
// returns it.
func (e *testEnv) seedUser(t *testing.T, email, password string, role rbac.Role) *identity.User {
	t.Helper()

	username := strings.SplitN(email, "@", 2)[0]
	user, err := e.handler.identityService.Register(context.Background(), identity.RegisterInput{
		FullName: "Test " + username,
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

// accessTokenFor mints a valid access token for the user.
func (e *testEnv) accessTokenFor(t *testing.T, u *identity.User) string {
	t.Helper()

	raw, err := e.tokens.IssueAccessToken(u.ID, u.Email, u.Role, u.Name)
	require.NoError(t, err)
	return raw
}

// doJSON performs a request against the router with an optional JSON
// body and bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON body.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// forgeToken signs an access token with the wrong secret. It decodes
// cleanly but fails verification.
func forgeToken(t *testing.T, userID, email, role, name string) string {
	t.Helper()

	forger := token.NewService([]byte("attacker-secret"), []byte("attacker-secret-2"), time.Hour, time.Hour)
	raw, err := forger.IssueAccessToken(userID, email, rbac.Role(role), name)
	require.NoError(t, err)
	return raw
}

// cookieByName finds a Set-Cookie entry on the response.
func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
