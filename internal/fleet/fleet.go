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

// Package fleet holds the domain records behind the protected API
// routes. The auth subsystem treats these as opaque; handlers reach
// them through the Repository interface so the backing store stays
// swappable.
package fleet

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("fleet: record not found")

// Vehicle statuses
const (
	VehicleActive      = "active"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)

// Trip statuses
const (
	TripScheduled  = "scheduled"
	TripInProgress = "in_progress"
	TripCompleted  = "completed"
)

// Expense approval actions
const (
	ExpensePending  = "pending"
	ExpenseApproved = "approved"
	ExpenseRejected = "rejected"
)

// Incident severities accepted by the safety endpoints.
var IncidentSeverities = []string{"low", "medium", "high", "critical"}

type Vehicle struct {
	ID          string    `json:"id"`
	Plate       string    `json:"plate"`
	Type        string    `json:"type"`
	Year        int       `json:"year"`
	Capacity    int       `json:"capacity,omitempty"`
	Status      string    `json:"status"`
	Mileage     int       `json:"mileage"`
	LastService time.Time `json:"lastService,omitempty"`
	AddedBy     string    `json:"addedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Trip struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DriverID    string    `json:"driverId"`
	VehicleID   string    `json:"vehicleId"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Driver struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	License   string    `json:"license"`
	Phone     string    `json:"phone,omitempty"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"createdAt"`
}

type MaintenanceLog struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicleId"`
	ServiceType string    `json:"serviceType"`
	Cost        float64   `json:"cost"`
	Notes       string    `json:"notes,omitempty"`
	ServicedAt  time.Time `json:"servicedAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Expense struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	ApprovedBy string    `json:"approvedBy,omitempty"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Incident struct {
	ID          string    `json:"id"`
	DriverID    string    `json:"driverId,omitempty"`
	VehicleID   string    `json:"vehicleId,omitempty"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	ReportedBy  string    `json:"reportedBy,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository is the persistence contract for fleet records.
type Repository interface {
	ListVehicles(ctx context.Context) ([]*Vehicle, error)
	CreateVehicle(ctx context.Context, v *Vehicle) error
	// RetireVehicle soft-deletes by flipping the status to "retired".
	RetireVehicle(ctx context.Context, id string) error

	ListTrips(ctx context.Context) ([]*Trip, error)
	CreateTrip(ctx context.Context, t *Trip) error

	ListDrivers(ctx context.Context) ([]*Driver, error)
	SuspendDriver(ctx context.Context, id string) error

	ListMaintenance(ctx context.Context) ([]*MaintenanceLog, error)
	CreateMaintenance(ctx context.Context, m *MaintenanceLog) error

	ListExpenses(ctx context.Context) ([]*Expense, error)
	CreateExpense(ctx context.Context, e *Expense) error
	// SetExpenseStatus records a finance approval decision.
	SetExpenseStatus(ctx context.Context, id, status, approvedBy string) error

	ListIncidents(ctx context.Context) ([]*Incident, error)
	CreateIncident(ctx context.Context, i *Incident) error
}

// ValidSeverity reports whether s is an accepted incident severity.
func ValidSeverity(s string) bool {
	for _, v := range IncidentSeverities {
		if v == s {
			return true
		}
	}
	return false
}
