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

	"github.com/go-chi/chi/v5"

	"github.com/fleetflow/fleetflow/internal/identity"
	"github.com/fleetflow/fleetflow/internal/observability/logger"
	"github.com/fleetflow/fleetflow/internal/rbac"
)

// adminUserPayload extends the session user shape with the fields the
// administration screen shows.
type adminUserPayload struct {
	userPayload
	Username     string `json:"username"`
	Active       bool   `json:"active"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

func toAdminUserPayload(u *identity.User) adminUserPayload {
	return adminUserPayload{
		userPayload:  toUserPayload(u),
		Username:     u.Username,
		Active:       u.Active,
		SerialNumber: u.SerialNumber,
	}
}

// ListUsers returns every account.
// @Summary List users
// @Tags Users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.identityService.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list users", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	out := make([]adminUserPayload, len(users))
	for i, u := range users {
		out[i] = toAdminUserPayload(u)
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "users": out})
}

// CreateUser provisions an account on behalf of an administrator. Same
// validation as self-registration, but no auto-login.
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
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
			slog.ErrorContext(r.Context(), "failed to create user", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "user": toAdminUserPayload(user)})
}

// ChangeRoleRequest is the PATCH /users/{id}/role body.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeUserRole reassigns a user's role. Takes effect on the user's
// next token refresh or login.
// @Summary Change user role
// @Tags Users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{id}/role [patch]
func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	role := rbac.Role(req.Role)
	if !rbac.ValidRole(role) {
		respondError(w, http.StatusBadRequest, "Invalid role.")
		return
	}

	actor, _ := GetIdentity(r.Context())
	userID := chi.URLParam(r, "id")
	if err := h.identityService.ChangeRole(r.Context(), actor.UserID, userID, role); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found.")
			return
		}
		slog.ErrorContext(r.Context(), "failed to change role", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "role": string(role)})
}

// SuspendUser deactivates an account. The user keeps any live access
// token until it expires; the next refresh is rejected.
// @Summary Suspend user
// @Tags Users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /users/{id}/suspend [post]
func (h *Handler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetIdentity(r.Context())
	userID := chi.URLParam(r, "id")
	if err := h.identityService.SetActive(r.Context(), actor.UserID, userID, false); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found.")
			return
		}
		slog.ErrorContext(r.Context(), "failed to suspend user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User suspended."})
}
