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

package rbac

// Permission is a fine-grained "<resource>:<action>" capability.
// Permissions are never assigned to users directly; they are derived
// from the user's role through the matrix.
type Permission string

const (
	// Vehicles
	PermVehiclesRead   Permission = "vehicles:read"
	PermVehiclesCreate Permission = "vehicles:create"
	PermVehiclesUpdate Permission = "vehicles:update"
	PermVehiclesDelete Permission = "vehicles:delete"

	// Drivers
	PermDriversRead    Permission = "drivers:read"
	PermDriversCreate  Permission = "drivers:create"
	PermDriversUpdate  Permission = "drivers:update"
	PermDriversSuspend Permission = "drivers:suspend"
	PermDriversDelete  Permission = "drivers:delete"

	// Trips
	PermTripsRead   Permission = "trips:read"
	PermTripsCreate Permission = "trips:create"
	PermTripsUpdate Permission = "trips:update"
	PermTripsDelete Permission = "trips:delete"
	PermTripsAssign Permission = "trips:assign"

	// Maintenance
	PermMaintenanceRead   Permission = "maintenance:read"
	PermMaintenanceCreate Permission = "maintenance:create"
	PermMaintenanceUpdate Permission = "maintenance:update"

	// Finance
	PermFinanceRead    Permission = "finance:read"
	PermFinanceCreate  Permission = "finance:create"
	PermFinanceExport  Permission = "finance:export"
	PermFinanceApprove Permission = "finance:approve"

	// Safety
	PermSafetyRead   Permission = "safety:read"
	PermSafetyCreate Permission = "safety:create"
	PermSafetyUpdate Permission = "safety:update"

	// Analytics
	PermAnalyticsRead Permission = "analytics:read"

	// Users / administration
	PermUsersRead   Permission = "users:read"
	PermUsersCreate Permission = "users:create"
	PermUsersUpdate Permission = "users:update"
	PermUsersDelete Permission = "users:delete"
	PermRolesAssign Permission = "roles:assign"
)
