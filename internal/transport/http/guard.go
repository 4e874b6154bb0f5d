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
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/observability/logger"
	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/fleetflow/fleetflow/internal/token"
)

// Guard wraps a handler with signature verification and permission
// checks. Evaluation order is fixed: authentication, then the role
// whitelist, then the permission set. The explicit Authorization header
// takes precedence over the cookie so API clients can act as a
// different principal than the browser session.
//
// permissions are ANDed: the role must hold every one. An empty
// permission list (RequireAuth) only asserts a valid token. A non-empty
// roles whitelist rejects every role outside it regardless of what the
// permission matrix would allow.
func (h *Handler) Guard(next http.HandlerFunc, permissions []rbac.Permission, roles ...rbac.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromHeader(r)
		if raw == "" {
			raw = tokenFromCookie(r)
		}
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "Authentication required. Please log in.")
			return
		}

		claims, err := h.tokens.VerifyAccessToken(raw)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				respondError(w, http.StatusUnauthorized, "Session expired. Please log in again.")
			} else {
				respondError(w, http.StatusUnauthorized, "Invalid token. Please log in again.")
			}
			return
		}

		if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
			h.denied(r, claims, "role_whitelist")
			names := make([]string, len(roles))
			for i, role := range roles {
				names[i] = string(role)
			}
			respondError(w, http.StatusForbidden, "Access denied. Required roles: "+strings.Join(names, ", "))
			return
		}

		if !rbac.HasAll(claims.Role, permissions) {
			h.denied(r, claims, "permissions")
			respondPermissionDenied(w, "Insufficient permissions for this action.", permissions)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
			Name:   claims.Name,
		})
		next(w, r.WithContext(ctx))
	}
}

// RequireAuth asserts a valid token without any permission check.
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return h.Guard(next, nil)
}

// RequireAdmin restricts a handler to the admin role.
func (h *Handler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return h.Guard(next, nil, rbac.RoleAdmin)
}

// RequireFleetManager restricts a handler to admin or fleet manager.
func (h *Handler) RequireFleetManager(next http.HandlerFunc) http.HandlerFunc {
	return h.Guard(next, nil, rbac.RoleAdmin, rbac.RoleFleetManager)
}

func roleAllowed(role rbac.Role, whitelist []rbac.Role) bool {
	for _, allowed := range whitelist {
		if role == allowed {
			return true
		}
	}
	return false
}

func (h *Handler) denied(r *http.Request, claims *token.AccessClaims, reason string) {
	slog.WarnContext(r.Context(), "authorization denied",
		logger.UserID(claims.UserID),
		logger.Role(string(claims.Role)),
		logger.Path(r.URL.Path),
		logger.DenyReason(reason),
	)
	h.meter.RecordDenial(r.Context(), reason)
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeAccessDenied,
		ActorID:   claims.UserID,
		Resource:  r.Method + " " + r.URL.Path,
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
		Metadata:  map[string]any{"reason": reason, "role": string(claims.Role)},
	})
}
