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

// Package rbac defines the fixed role and permission model.
//
// The role → permission matrix in matrix.go is the single source of
// truth for what each role may do. No other package may hard-code a
// role's capabilities; endpoints describe themselves in terms of
// required permissions (plus an optional role whitelist for routes
// that must stay restricted to an exact role subset).
package rbac

// Role is a coarse job-function tag assigned to a user.
type Role string

const (
	// RoleAdmin has every permission, including user administration.
	RoleAdmin Role = "admin"

	// RoleFleetManager has full operational access but no finance
	// approval and no user management.
	RoleFleetManager Role = "fleet_manager"

	// RoleDispatcher handles day-to-day trip and driver operations.
	RoleDispatcher Role = "dispatcher"

	// RoleSafetyOfficer reads everything and writes safety records
	// and driver suspensions.
	RoleSafetyOfficer Role = "safety_officer"

	// RoleFinance works with financial data only.
	RoleFinance Role = "finance"
)

// Roles lists every valid role. Order is stable for error messages.
var Roles = []Role{
	RoleAdmin,
	RoleFleetManager,
	RoleDispatcher,
	RoleSafetyOfficer,
	RoleFinance,
}

// roleLabels maps roles to human-readable names for UI and audit output.
var roleLabels = map[Role]string{
	RoleAdmin:         "Administrator",
	RoleFleetManager:  "Fleet Manager",
	RoleDispatcher:    "Dispatcher",
	RoleSafetyOfficer: "Safety Officer",
	RoleFinance:       "Finance",
}

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// RoleLabel returns the human-readable label for a role, or the raw
// role string if it is unknown.
func RoleLabel(r Role) string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}
