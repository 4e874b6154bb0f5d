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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetflow/fleetflow/internal/rbac"
)

// =============================================================================
// SESSION ENDPOINT TESTS
// Category: Auth API - Login / Logout / Refresh / Register
// Type: Integration Test (handlers + router + in-memory stores)
// =============================================================================

// TestPurpose: Validates the full login happy path: response body shape,
// access cookie on /, refresh cookie scoped to the refresh endpoint.
// Scope: Integration Test
// Security: Cookie flags (HttpOnly, SameSite=Strict) and path scoping
// Expected: 200 with user payload and both cookies set.
// Test Case ID: SES-01
func TestAuth_Login_Success_SetsScopedCookies(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "dispatch@fleet.io", "correct-horse", rbac.RoleDispatcher)

	w := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "dispatch@fleet.io",
		Password: "correct-horse",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["accessToken"])

	u := body["user"].(map[string]any)
	assert.Equal(t, user.ID, u["id"])
	assert.Equal(t, "dispatch@fleet.io", u["email"])
	assert.Equal(t, "dispatcher", u["role"])

	access := cookieByName(w, "accessToken")
	require.NotNil(t, access, "SES-01: access cookie must be set")
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)

	refresh := cookieByName(w, "refreshToken")
	require.NotNil(t, refresh, "SES-01: refresh cookie must be set")
	assert.Equal(t, "/api/auth/refresh", refresh.Path,
		"SES-01: refresh token must only travel to the refresh endpoint")
	assert.True(t, refresh.HttpOnly)
}

// TestPurpose: Validates that missing credentials are rejected before any
// lookup happens.
// Scope: Integration Test
// Expected: 400 with the canonical message.
// Test Case ID: SES-02
func TestAuth_Login_MissingFields_ReturnsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	for _, req := range []LoginRequest{
		{Email: "", Password: "something"},
		{Email: "someone@fleet.io", Password: ""},
		{},
	} {
		w := env.doJSON(t, http.MethodPost, "/api/auth/login", "", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Email and password are required.", decodeBody(t, w)["error"])
	}
}

// TestPurpose: Validates that an unknown email and a wrong password are
// indistinguishable from the response alone.
// Scope: Integration Test
// Security: Account enumeration resistance
// Expected: Byte-identical 401 bodies for both failure modes.
// Test Case ID: SES-03
func TestAuth_Login_UnknownEmailAndWrongPassword_Indistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "known@fleet.io", "right-password", rbac.RoleFinance)

	wrongPw := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "known@fleet.io", Password: "wrong-password",
	})
	unknown := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "ghost@fleet.io", Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String(),
		"SES-03: failure bodies must not reveal whether the account exists")
}

// TestPurpose: Validates that a suspended account is refused with a
// distinct message, but only after the password checked out.
// Scope: Integration Test
// Security: Suspension must not become an enumeration oracle
// Expected: 403 for correct password; 401 generic body for wrong password.
// Test Case ID: SES-04
func TestAuth_Login_SuspendedAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "parked@fleet.io", "valid-password", rbac.RoleSafetyOfficer)
	require.NoError(t, env.users.SetActive(context.Background(), user.ID, false))

	correct := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "parked@fleet.io", Password: "valid-password",
	})
	assert.Equal(t, http.StatusForbidden, correct.Code)
	assert.Equal(t, "Account is suspended. Contact your administrator.", decodeBody(t, correct)["error"])

	wrong := env.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "parked@fleet.io", Password: "bad-password",
	})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code,
		"SES-04: wrong password on a suspended account must look like any bad login")
	assert.Equal(t, "Invalid email or password.", decodeBody(t, wrong)["error"])
}

// TestPurpose: Validates that logout clears both cookies at their scoped
// paths.
// Scope: Integration Test
// Expected: 200 and two expired Set-Cookie entries.
// Test Case ID: SES-05
func TestAuth_Logout_ClearsBothCookies(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "leaving@fleet.io", "valid-password", rbac.RoleAdmin)

	w := env.doJSON(t, http.MethodPost, "/api/auth/logout", env.accessTokenFor(t, user), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	access := cookieByName(w, "accessToken")
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Equal(t, -1, access.MaxAge)

	refresh := cookieByName(w, "refreshToken")
	require.NotNil(t, refresh)
	assert.Empty(t, refresh.Value)
	assert.Equal(t, -1, refresh.MaxAge)
	assert.Equal(t, "/api/auth/refresh", refresh.Path)
}

// TestPurpose: Validates the refresh endpoint's failure ladder: no
// cookie, garbage cookie, suspended account.
// Scope: Integration Test
// Expected: 401 / 401 / 403 with the canonical messages.
// Test Case ID: SES-06
func TestAuth_Refresh_FailureModes(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "refresher@fleet.io", "valid-password", rbac.RoleFleetManager)

	// No cookie at all.
	w := env.doJSON(t, http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No refresh token found. Please log in.", decodeBody(t, w)["error"])

	// Garbage cookie.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "not.a.jwt"})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Refresh token expired or invalid. Please log in.", decodeBody(t, rec)["error"])

	// Valid token but the account was suspended in the meantime.
	refreshToken, err := env.tokens.IssueRefreshToken(user.ID, user.Email)
	require.NoError(t, err)
	require.NoError(t, env.users.SetActive(context.Background(), user.ID, false))

	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Account is suspended or does not exist.", decodeBody(t, rec)["error"])
}

// TestPurpose: Validates that a successful refresh mints a new access
// token without ever re-issuing the refresh token.
// Scope: Integration Test
// Security: Refresh tokens are not rotated; a stolen access cookie can
// not be parlayed into a new refresh token here.
// Expected: 200, fresh access cookie, no refreshToken Set-Cookie.
// Test Case ID: SES-07
func TestAuth_Refresh_Success_NeverReissuesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "steady@fleet.io", "valid-password", rbac.RoleDispatcher)

	refreshToken, err := env.tokens.IssueRefreshToken(user.ID, user.Email)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["accessToken"])

	assert.NotNil(t, cookieByName(rec, "accessToken"))
	assert.Nil(t, cookieByName(rec, "refreshToken"),
		"SES-07: refresh must not re-issue the refresh token")

	// The minted access token verifies and reflects current user state.
	claims, err := env.tokens.VerifyAccessToken(body["accessToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, rbac.RoleDispatcher, claims.Role)
}

// TestPurpose: Validates registration validation order and the duplicate
// account conflict, plus auto-login on success.
// Scope: Integration Test
// Expected: 400 for each invalid input, 409 on duplicates, 201 + cookies
// on success.
// Test Case ID: SES-08
func TestAuth_Register_ValidationAndAutoLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "taken@fleet.io", "valid-password", rbac.RoleFinance)

	cases := []struct {
		name     string
		req      RegisterRequest
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing fields",
			req:      RegisterRequest{Email: "new@fleet.io"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Full name, username, email, password and role are required.",
		},
		{
			name:     "invalid role",
			req:      RegisterRequest{FullName: "N", Username: "n", Email: "new@fleet.io", Password: "longenough", Role: "superuser"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Invalid role.",
		},
		{
			name:     "bad email",
			req:      RegisterRequest{FullName: "N", Username: "n", Email: "not-an-email", Password: "longenough", Role: "dispatcher"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Invalid email address.",
		},
		{
			name:     "short password",
			req:      RegisterRequest{FullName: "N", Username: "n", Email: "new@fleet.io", Password: "short", Role: "dispatcher"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Password must be at least 8 characters.",
		},
		{
			name:     "duplicate email different case",
			req:      RegisterRequest{FullName: "N", Username: "fresh", Email: "TAKEN@fleet.io", Password: "longenough", Role: "dispatcher"},
			wantCode: http.StatusConflict,
			wantErr:  "An account with this email or username already exists.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", tc.req)
			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantErr, decodeBody(t, w)["error"])
		})
	}

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		FullName: "New Driver",
		Username: "newdriver",
		Email:    "new@fleet.io",
		Password: "longenough",
		Role:     "dispatcher",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["accessToken"])
	assert.NotNil(t, cookieByName(w, "accessToken"), "SES-08: register must auto-login")
	assert.NotNil(t, cookieByName(w, "refreshToken"))
}

// TestPurpose: Validates that /api/auth/me reflects the verified token
// identity, not anything client-supplied.
// Scope: Integration Test
// Expected: 200 with the claims' user payload.
// Test Case ID: SES-09
func TestAuth_Me_ReturnsVerifiedIdentity(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "whoami@fleet.io", "valid-password", rbac.RoleSafetyOfficer)

	w := env.doJSON(t, http.MethodGet, "/api/auth/me", env.accessTokenFor(t, user), nil)

	require.Equal(t, http.StatusOK, w.Code)
	u := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, user.ID, u["id"])
	assert.Equal(t, "whoami@fleet.io", u["email"])
	assert.Equal(t, "safety_officer", u["role"])
}
