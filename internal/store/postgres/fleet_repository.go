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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetflow/fleetflow/internal/fleet"
)

// FleetRepository implements fleet.Repository.
type FleetRepository struct {
	db *DB
}

// NewFleetRepository creates a new fleet repository
func NewFleetRepository(db *DB) *FleetRepository {
	return &FleetRepository{db: db}
}

// ListVehicles returns all non-retired vehicles, newest first.
func (r *FleetRepository) ListVehicles(ctx context.Context) ([]*fleet.Vehicle, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, plate, type, year, capacity, status, mileage, last_service, added_by, created_at
		FROM vehicles WHERE status <> $1 ORDER BY created_at DESC
	`, fleet.VehicleRetired)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var out []*fleet.Vehicle
	for rows.Next() {
		var v fleet.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.Type, &v.Year, &v.Capacity,
			&v.Status, &v.Mileage, &v.LastService, &v.AddedBy, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// CreateVehicle inserts a new vehicle.
func (r *FleetRepository) CreateVehicle(ctx context.Context, v *fleet.Vehicle) error {
	v.CreatedAt = time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO vehicles (id, plate, type, year, capacity, status, mileage, last_service, added_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, v.ID, v.Plate, v.Type, v.Year, v.Capacity, v.Status, v.Mileage, v.LastService, v.AddedBy, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

// RetireVehicle marks a vehicle retired. Records are never deleted.
func (r *FleetRepository) RetireVehicle(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE vehicles SET status = $2 WHERE id = $1
	`, id, fleet.VehicleRetired)
	if err != nil {
		return fmt.Errorf("failed to retire vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fleet.ErrNotFound
	}
	return nil
}

// ListTrips returns all trips, newest first.
func (r *FleetRepository) ListTrips(ctx context.Context) ([]*fleet.Trip, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, origin, destination, driver_id, vehicle_id, status, scheduled_at, created_by, created_at
		FROM trips ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var out []*fleet.Trip
	for rows.Next() {
		var t fleet.Trip
		if err := rows.Scan(&t.ID, &t.Origin, &t.Destination, &t.DriverID, &t.VehicleID,
			&t.Status, &t.ScheduledAt, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// CreateTrip inserts a new trip.
func (r *FleetRepository) CreateTrip(ctx context.Context, t *fleet.Trip) error {
	t.CreatedAt = time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO trips (id, origin, destination, driver_id, vehicle_id, status, scheduled_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.Origin, t.Destination, t.DriverID, t.VehicleID, t.Status, t.ScheduledAt, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// ListDrivers returns all drivers.
func (r *FleetRepository) ListDrivers(ctx context.Context) ([]*fleet.Driver, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, license, phone, suspended, created_at FROM drivers ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var out []*fleet.Driver
	for rows.Next() {
		var d fleet.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.License, &d.Phone, &d.Suspended, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// SuspendDriver flags a driver as suspended.
func (r *FleetRepository) SuspendDriver(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `UPDATE drivers SET suspended = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to suspend driver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fleet.ErrNotFound
	}
	return nil
}

// ListMaintenance returns maintenance logs, newest service first.
func (r *FleetRepository) ListMaintenance(ctx context.Context) ([]*fleet.MaintenanceLog, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, vehicle_id, service_type, cost, notes, serviced_at, created_by, created_at
		FROM maintenance_logs ORDER BY serviced_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance logs: %w", err)
	}
	defer rows.Close()

	var out []*fleet.MaintenanceLog
	for rows.Next() {
		var m fleet.MaintenanceLog
		if err := rows.Scan(&m.ID, &m.VehicleID, &m.ServiceType, &m.Cost, &m.Notes,
			&m.ServicedAt, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance log: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CreateMaintenance inserts a maintenance log.
func (r *FleetRepository) CreateMaintenance(ctx context.Context, m *fleet.MaintenanceLog) error {
	m.CreatedAt = time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO maintenance_logs (id, vehicle_id, service_type, cost, notes, serviced_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.VehicleID, m.ServiceType, m.Cost, m.Notes, m.ServicedAt, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance log: %w", err)
	}
	return nil
}

// ListExpenses returns expenses, newest first.
func (r *FleetRepository) ListExpenses(ctx context.Context) ([]*fleet.Expense, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, category, amount, status, approved_by, created_by, created_at
		FROM expenses ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []*fleet.Expense
	for rows.Next() {
		var e fleet.Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Amount, &e.Status, &e.ApprovedBy,
			&e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// CreateExpense inserts an expense in pending state.
func (r *FleetRepository) CreateExpense(ctx context.Context, e *fleet.Expense) error {
	e.CreatedAt = time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO expenses (id, category, amount, status, approved_by, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Category, e.Amount, e.Status, e.ApprovedBy, e.CreatedBy, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// SetExpenseStatus records an approval decision.
func (r *FleetRepository) SetExpenseStatus(ctx context.Context, id, status, approvedBy string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE expenses SET status = $2, approved_by = $3 WHERE id = $1
	`, id, status, approvedBy)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fleet.ErrNotFound
	}
	return nil
}

// ListIncidents returns safety incidents, newest first.
func (r *FleetRepository) ListIncidents(ctx context.Context) ([]*fleet.Incident, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, driver_id, vehicle_id, severity, description, reported_by, occurred_at, created_at
		FROM incidents ORDER BY occurred_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var out []*fleet.Incident
	for rows.Next() {
		var i fleet.Incident
		if err := rows.Scan(&i.ID, &i.DriverID, &i.VehicleID, &i.Severity, &i.Description,
			&i.ReportedBy, &i.OccurredAt, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		out = append(out, &i)
	}
	return out, rows.Err()
}

// CreateIncident inserts a safety incident.
func (r *FleetRepository) CreateIncident(ctx context.Context, i *fleet.Incident) error {
	i.CreatedAt = time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO incidents (id, driver_id, vehicle_id, severity, description, reported_by, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, i.ID, i.DriverID, i.VehicleID, i.Severity, i.Description, i.ReportedBy, i.OccurredAt, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}
	return nil
}
