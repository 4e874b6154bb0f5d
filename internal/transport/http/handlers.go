// @title FleetFlow API
// @version 1.0.0
// @description Fleet management platform with role-based access control

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name accessToken

package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/fleet"
	"github.com/fleetflow/fleetflow/internal/identity"
	"github.com/fleetflow/fleetflow/internal/observability/metrics"
	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/fleetflow/fleetflow/internal/token"
)

// Cookie names and scopes. The refresh cookie is scoped to the refresh
// endpoint only so the browser never sends the long-lived token
// anywhere else.
const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/auth/refresh"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	fleetRepo       fleet.Repository
	tokens          *token.Service
	auditLogger     audit.Logger
	meter           *metrics.Meter
	cookieSecure    bool
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	fleetRepo fleet.Repository,
	tokens *token.Service,
	auditLogger audit.Logger,
	meter *metrics.Meter,
	cookieSecure bool,
) *Handler {
	return &Handler{
		identityService: identityService,
		fleetRepo:       fleetRepo,
		tokens:          tokens,
		auditLogger:     auditLogger,
		meter:           meter,
		cookieSecure:    cookieSecure,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(h.RequestGate)

	// Health check
	r.Get("/healthz", h.HealthCheck)

	// Session endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/refresh", h.Refresh)
		r.Post("/register", h.Register)
		r.Get("/me", h.Guard(h.Me, nil))
	})

	// Fleet endpoints, each wrapped by the authorization guard with the
	// permissions of the corresponding dashboard module.
	r.Route("/api", func(r chi.Router) {
		r.Get("/vehicles", h.Guard(h.ListVehicles, []rbac.Permission{rbac.PermVehiclesRead}))
		r.Post("/vehicles", h.Guard(h.CreateVehicle, []rbac.Permission{rbac.PermVehiclesCreate}))
		r.Delete("/vehicles/{id}", h.Guard(h.RetireVehicle, []rbac.Permission{rbac.PermVehiclesDelete}))

		r.Get("/trips", h.Guard(h.ListTrips, []rbac.Permission{rbac.PermTripsRead}))
		r.Post("/trips", h.Guard(h.CreateTrip, []rbac.Permission{rbac.PermTripsCreate}))

		r.Get("/drivers", h.Guard(h.ListDrivers, []rbac.Permission{rbac.PermDriversRead}))
		r.Post("/drivers/{id}/suspend", h.Guard(h.SuspendDriver, []rbac.Permission{rbac.PermDriversSuspend}))

		r.Get("/maintenance", h.Guard(h.ListMaintenance, []rbac.Permission{rbac.PermMaintenanceRead}))
		r.Post("/maintenance", h.Guard(h.CreateMaintenance, []rbac.Permission{rbac.PermMaintenanceCreate}))

		r.Get("/finance/reports", h.Guard(h.ListExpenses, []rbac.Permission{rbac.PermFinanceRead}))
		r.Post("/finance/reports", h.Guard(h.CreateExpense, []rbac.Permission{rbac.PermFinanceCreate}))
		r.Post("/finance/approve", h.Guard(h.ApproveExpense, []rbac.Permission{rbac.PermFinanceApprove}))

		r.Get("/safety/incidents", h.Guard(h.ListIncidents, []rbac.Permission{rbac.PermSafetyRead}))
		r.Post("/safety/incidents", h.Guard(h.CreateIncident, []rbac.Permission{rbac.PermSafetyCreate}))

		// User administration is double-locked: permission check plus an
		// explicit admin role whitelist.
		r.Get("/users", h.Guard(h.ListUsers, []rbac.Permission{rbac.PermUsersRead}, rbac.RoleAdmin))
		r.Post("/users", h.Guard(h.CreateUser, []rbac.Permission{rbac.PermUsersCreate, rbac.PermRolesAssign}, rbac.RoleAdmin))
		r.Patch("/users/{id}/role", h.Guard(h.ChangeUserRole, []rbac.Permission{rbac.PermRolesAssign}, rbac.RoleAdmin))
		r.Post("/users/{id}/suspend", h.Guard(h.SuspendUser, nil, rbac.RoleAdmin))
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fleetflow",
	})
}

// Cookie helpers

func (h *Handler) setAuthCookies(w http.ResponseWriter, pair token.Pair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.AccessTTL().Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.RefreshTTL().Seconds()),
	})
}

func (h *Handler) setAccessCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.AccessTTL().Seconds()),
	})
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	clearAccessCookie(w)
	http.SetCookie(w, &http.Cookie{
		Name:   refreshCookieName,
		Value:  "",
		Path:   refreshCookiePath,
		MaxAge: -1,
	})
}

func clearAccessCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   accessCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// tokenFromCookie returns the access token cookie value, or "".
func tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(accessCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// tokenFromHeader returns the Authorization bearer token, or "".
func tokenFromHeader(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// Response envelope helpers. Every body carries a "success" flag; error
// bodies carry a human-readable "error" and, on permission denials, the
// "required" permission list.

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func respondPermissionDenied(w http.ResponseWriter, message string, required []rbac.Permission) {
	perms := make([]string, len(required))
	for i, p := range required {
		perms[i] = string(p)
	}
	respondJSON(w, http.StatusForbidden, map[string]any{
		"success":  false,
		"error":    message,
		"required": perms,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
