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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fleetflow/fleetflow/internal/observability/logger"
	"github.com/fleetflow/fleetflow/internal/token"
)

// Edge Gate Principles:
// 1. The gate decodes tokens WITHOUT signature verification; it decides
//    routing (pass / redirect / reject), never authorization.
// 2. Every protected API route is additionally wrapped by the guard,
//    which verifies the signature. A forged token that slips past the
//    gate dies there.
// 3. Fail toward login: anything unrecognized on a UI path redirects
//    to /auth rather than erroring.

// Routes reachable without any token.
var publicRoutes = []string{
	"/",
	"/auth",
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
	"/healthz",
}

func isPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Log request start
			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RequestGate is the edge middleware applied to every request. It reads
// the access token from the cookie (falling back to the Authorization
// header), decodes it without verification and routes accordingly:
// authenticated visitors are bounced off the login page, anonymous
// visitors are bounced off the dashboard, and API calls get structured
// 401s instead of redirects.
func (h *Handler) RequestGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		raw := tokenFromCookie(r)
		if raw == "" {
			raw = tokenFromHeader(r)
		}

		if isPublicRoute(path) {
			// A visitor who already carries a decodable token has no
			// business on the login page.
			if raw != "" && (path == "/auth" || strings.HasPrefix(path, "/auth/")) {
				if token.DecodeUnsafe(raw) != nil {
					http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
					return
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		isAPI := strings.HasPrefix(path, "/api/")
		isDashboard := path == "/dashboard" || strings.HasPrefix(path, "/dashboard/")

		if raw == "" {
			if isAPI {
				respondError(w, http.StatusUnauthorized, "Authentication required.")
				return
			}
			if isDashboard {
				http.Redirect(w, r, "/auth", http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		claims := token.DecodeUnsafe(raw)
		if claims == nil {
			// Garbage cookie: drop it so the client does not loop.
			clearAccessCookie(w)
			if isAPI {
				respondError(w, http.StatusUnauthorized, "Invalid token.")
				return
			}
			if isDashboard {
				http.Redirect(w, r, "/auth", http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), gateIdentityKey, Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
			Name:   claims.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
