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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/identity"
	"github.com/fleetflow/fleetflow/internal/observability/logger"
	"github.com/fleetflow/fleetflow/internal/rbac"
)

// userPayload is the user shape returned by login, register and me.
type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserPayload(u *identity.User) userPayload {
	return userPayload{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"admin@fleet.io"`
	Password string `json:"password" example:"secret123"`
}

// Login handles user login
// @Summary Login
// @Description Authenticate and receive token cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.meter.RecordLoginFailure(r.Context())
		// Unknown email and wrong password produce the same body so
		// the response cannot be used to enumerate accounts.
		switch {
		case errors.Is(err, identity.ErrAccountSuspended):
			respondError(w, http.StatusForbidden, "Account is suspended. Contact your administrator.")
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid email or password.")
		default:
			slog.ErrorContext(r.Context(), "login failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Email, user.Role, user.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue tokens", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	h.setAuthCookies(w, pair)
	h.meter.RecordLogin(r.Context(), string(user.Role))
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeLoginSuccess,
		ActorID:   user.ID,
		Resource:  "session",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
		Metadata:  map[string]any{"role": string(user.Role)},
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"user":        toUserPayload(user),
		"accessToken": pair.AccessToken,
	})
}

// Logout handles user logout
// @Summary Logout
// @Description Clear both token cookies
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	// Best-effort attribution; logout succeeds with or without a token.
	if id, ok := GetGateIdentity(r.Context()); ok {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeLogout,
			ActorID:   id.UserID,
			Resource:  "session",
			IPAddress: getIPAddress(r),
			UserAgent: r.UserAgent(),
		})
	}

	h.clearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully.",
	})
}

// Refresh exchanges a valid refresh cookie for a new access token. The
// refresh token itself is never rotated here; when it expires the user
// logs in again.
// @Summary Refresh access token
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		respondError(w, http.StatusUnauthorized, "No refresh token found. Please log in.")
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(cookie.Value)
	if err != nil {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeRefreshDenied,
			Resource:  "session",
			IPAddress: getIPAddress(r),
			Metadata:  map[string]any{"reason": "invalid_refresh_token"},
		})
		respondError(w, http.StatusUnauthorized, "Refresh token expired or invalid. Please log in.")
		return
	}

	// Re-read the user so suspensions and role changes take effect at
	// refresh time rather than riding out the refresh TTL.
	user, err := h.identityService.GetByID(r.Context(), claims.UserID)
	if err != nil || !user.Active {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeRefreshDenied,
			ActorID:   claims.UserID,
			Resource:  "session",
			IPAddress: getIPAddress(r),
			Metadata:  map[string]any{"reason": "suspended_or_missing"},
		})
		respondError(w, http.StatusForbidden, "Account is suspended or does not exist.")
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(user.ID, user.Email, user.Role, user.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue access token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	h.setAccessCookie(w, accessToken)
	h.meter.RecordRefresh(r.Context())
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeTokenRefreshed,
		ActorID:   user.ID,
		Resource:  "session",
		IPAddress: getIPAddress(r),
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"accessToken": accessToken,
	})
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	FullName     string `json:"fullName" example:"Dana Osei"`
	Username     string `json:"username" example:"dosei"`
	Email        string `json:"email" example:"dana@fleet.io"`
	Password     string `json:"password" example:"secret123"`
	Role         string `json:"role" example:"dispatcher"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

// Register handles user registration
// @Summary Register a new user
// @Description Create an account and log it in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.identityService.Register(r.Context(), identity.RegisterInput{
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Role:         rbac.Role(req.Role),
		SerialNumber: req.SerialNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "An account with this email or username already exists.")
		case errors.Is(err, identity.ErrMissingField):
			respondError(w, http.StatusBadRequest, "Full name, username, email, password and role are required.")
		case errors.Is(err, identity.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, "Invalid role.")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "Invalid email address.")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "Password must be at least 8 characters.")
		default:
			slog.ErrorContext(r.Context(), "registration failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Email, user.Role, user.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue tokens", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	h.setAuthCookies(w, pair)
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeUserRegistered,
		ActorID:   user.ID,
		Resource:  "user",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
		Metadata:  map[string]any{"email": user.Email, "role": string(user.Role)},
	})

	respondJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"user":        toUserPayload(user),
		"accessToken": pair.AccessToken,
	})
}

// Me returns the verified identity of the caller.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := GetIdentity(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required. Please log in.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": userPayload{
			ID:    id.UserID,
			Email: id.Email,
			Name:  id.Name,
			Role:  string(id.Role),
		},
	})
}
