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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetflow/fleetflow/internal/fleet"
	"github.com/fleetflow/fleetflow/internal/observability/logger"
)

// Vehicles

// ListVehicles returns the active fleet.
// @Summary List vehicles
// @Tags Fleet
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /vehicles [get]
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleetRepo.ListVehicles(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list vehicles", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "vehicles": vehicles})
}

// CreateVehicleRequest is the POST /vehicles body.
type CreateVehicleRequest struct {
	Plate    string `json:"plate"`
	Type     string `json:"type"`
	Year     int    `json:"year"`
	Capacity int    `json:"capacity"`
	Mileage  int    `json:"mileage"`
}

// CreateVehicle registers a new vehicle.
// @Summary Create vehicle
// @Tags Fleet
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /vehicles [post]
func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Plate == "" || req.Type == "" || req.Year == 0 {
		respondError(w, http.StatusBadRequest, "Plate, type and year are required.")
		return
	}

	id, _ := GetIdentity(r.Context())
	v := &fleet.Vehicle{
		ID:       "veh_" + uuid.NewString(),
		Plate:    req.Plate,
		Type:     req.Type,
		Year:     req.Year,
		Capacity: req.Capacity,
		Mileage:  req.Mileage,
		Status:   fleet.VehicleActive,
		AddedBy:  id.UserID,
	}
	if err := h.fleetRepo.CreateVehicle(r.Context(), v); err != nil {
		slog.ErrorContext(r.Context(), "failed to create vehicle", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "vehicle": v})
}

// RetireVehicle soft-deletes a vehicle.
// @Summary Retire vehicle
// @Tags Fleet
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /vehicles/{id} [delete]
func (h *Handler) RetireVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.fleetRepo.RetireVehicle(r.Context(), id); err != nil {
		if errors.Is(err, fleet.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Vehicle not found.")
			return
		}
		slog.ErrorContext(r.Context(), "failed to retire vehicle", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Vehicle retired."})
}

// Trips

// ListTrips returns all trips.
// @Summary List trips
// @Tags Fleet
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /trips [get]
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.fleetRepo.ListTrips(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list trips", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "trips": trips})
}

// CreateTripRequest is the POST /trips body.
type CreateTripRequest struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DriverID    string    `json:"driverId"`
	VehicleID   string    `json:"vehicleId"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// CreateTrip schedules a new trip.
// @Summary Create trip
// @Tags Fleet
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /trips [post]
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Origin == "" || req.Destination == "" || req.DriverID == "" || req.VehicleID == "" {
		respondError(w, http.StatusBadRequest, "Origin, destination, driverId and vehicleId are required.")
		return
	}

	id, _ := GetIdentity(r.Context())
	t := &fleet.Trip{
		ID:          "trp_" + uuid.NewString(),
		Origin:      req.Origin,
		Destination: req.Destination,
		DriverID:    req.DriverID,
		VehicleID:   req.VehicleID,
		Status:      fleet.TripScheduled,
		ScheduledAt: req.ScheduledAt,
		CreatedBy:   id.UserID,
	}
	if err := h.fleetRepo.CreateTrip(r.Context(), t); err != nil {
		slog.ErrorContext(r.Context(), "failed to create trip", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "trip": t})
}

// Drivers

// ListDrivers returns all drivers.
// @Summary List drivers
// @Tags Fleet
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /drivers [get]
func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.fleetRepo.ListDrivers(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list drivers", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "drivers": drivers})
}

// SuspendDriver flags a driver as suspended.
// @Summary Suspend driver
// @Tags Fleet
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /drivers/{id}/suspend [post]
func (h *Handler) SuspendDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.fleetRepo.SuspendDriver(r.Context(), id); err != nil {
		if errors.Is(err, fleet.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Driver not found.")
			return
		}
		slog.ErrorContext(r.Context(), "failed to suspend driver", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Driver suspended."})
}

// Maintenance

// ListMaintenance returns maintenance history.
// @Summary List maintenance logs
// @Tags Fleet
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /maintenance [get]
func (h *Handler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	logs, err := h.fleetRepo.ListMaintenance(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list maintenance logs", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "maintenance": logs})
}

// CreateMaintenanceRequest is the POST /maintenance body.
type CreateMaintenanceRequest struct {
	VehicleID   string    `json:"vehicleId"`
	ServiceType string    `json:"serviceType"`
	Cost        float64   `json:"cost"`
	Notes       string    `json:"notes"`
	ServicedAt  time.Time `json:"servicedAt"`
}

// CreateMaintenance records a service event.
// @Summary Create maintenance log
// @Tags Fleet
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /maintenance [post]
func (h *Handler) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.VehicleID == "" || req.ServiceType == "" {
		respondError(w, http.StatusBadRequest, "VehicleId and serviceType are required.")
		return
	}

	id, _ := GetIdentity(r.Context())
	m := &fleet.MaintenanceLog{
		ID:          "mnt_" + uuid.NewString(),
		VehicleID:   req.VehicleID,
		ServiceType: req.ServiceType,
		Cost:        req.Cost,
		Notes:       req.Notes,
		ServicedAt:  req.ServicedAt,
		CreatedBy:   id.UserID,
	}
	if err := h.fleetRepo.CreateMaintenance(r.Context(), m); err != nil {
		slog.ErrorContext(r.Context(), "failed to create maintenance log", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "maintenance": m})
}

// Finance

// ListExpenses returns the expense report.
// @Summary List expenses
// @Tags Finance
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /finance/reports [get]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.fleetRepo.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list expenses", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "expenses": expenses})
}

// CreateExpenseRequest is the POST /finance/reports body.
type CreateExpenseRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CreateExpense files a new expense in pending state.
// @Summary Create expense
// @Tags Finance
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /finance/reports [post]
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Category == "" || req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "Category and a positive amount are required.")
		return
	}

	id, _ := GetIdentity(r.Context())
	e := &fleet.Expense{
		ID:        "exp_" + uuid.NewString(),
		Category:  req.Category,
		Amount:    req.Amount,
		Status:    fleet.ExpensePending,
		CreatedBy: id.UserID,
	}
	if err := h.fleetRepo.CreateExpense(r.Context(), e); err != nil {
		slog.ErrorContext(r.Context(), "failed to create expense", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "expense": e})
}

// ApproveExpenseRequest is the POST /finance/approve body.
type ApproveExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
	Approve   bool   `json:"approve"`
}

// ApproveExpense records an approval decision.
// @Summary Approve or reject an expense
// @Tags Finance
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /finance/approve [post]
func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	var req ApproveExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ExpenseID == "" {
		respondError(w, http.StatusBadRequest, "ExpenseId is required.")
		return
	}

	status := fleet.ExpenseRejected
	if req.Approve {
		status = fleet.ExpenseApproved
	}
	id, _ := GetIdentity(r.Context())
	if err := h.fleetRepo.SetExpenseStatus(r.Context(), req.ExpenseID, status, id.UserID); err != nil {
		if errors.Is(err, fleet.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Expense not found.")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update expense", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "status": status})
}

// Safety

// ListIncidents returns safety incidents.
// @Summary List incidents
// @Tags Safety
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Router /safety/incidents [get]
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.fleetRepo.ListIncidents(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list incidents", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "incidents": incidents})
}

// CreateIncidentRequest is the POST /safety/incidents body.
type CreateIncidentRequest struct {
	DriverID    string    `json:"driverId"`
	VehicleID   string    `json:"vehicleId"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// CreateIncident records a safety incident.
// @Summary Report incident
// @Tags Safety
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /safety/incidents [post]
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Severity == "" || req.Description == "" {
		respondError(w, http.StatusBadRequest, "Severity and description are required.")
		return
	}
	if !fleet.ValidSeverity(req.Severity) {
		respondError(w, http.StatusBadRequest, "Severity must be one of: low, medium, high, critical.")
		return
	}

	id, _ := GetIdentity(r.Context())
	incident := &fleet.Incident{
		ID:          "inc_" + uuid.NewString(),
		DriverID:    req.DriverID,
		VehicleID:   req.VehicleID,
		Severity:    req.Severity,
		Description: req.Description,
		ReportedBy:  id.UserID,
		OccurredAt:  req.OccurredAt,
	}
	if err := h.fleetRepo.CreateIncident(r.Context(), incident); err != nil {
		slog.ErrorContext(r.Context(), "failed to create incident", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "incident": incident})
}
