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

// rolePermissions is the role → permission matrix. Single point of
// change: add or remove a permission here and it propagates to every
// guard check. The map is read-only at runtime.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermVehiclesRead, PermVehiclesCreate, PermVehiclesUpdate, PermVehiclesDelete,
		PermDriversRead, PermDriversCreate, PermDriversUpdate, PermDriversSuspend, PermDriversDelete,
		PermTripsRead, PermTripsCreate, PermTripsUpdate, PermTripsDelete, PermTripsAssign,
		PermMaintenanceRead, PermMaintenanceCreate, PermMaintenanceUpdate,
		PermFinanceRead, PermFinanceCreate, PermFinanceExport, PermFinanceApprove,
		PermSafetyRead, PermSafetyCreate, PermSafetyUpdate,
		PermAnalyticsRead,
		PermUsersRead, PermUsersCreate, PermUsersUpdate, PermUsersDelete, PermRolesAssign,
	},

	RoleFleetManager: {
		PermVehiclesRead, PermVehiclesCreate, PermVehiclesUpdate, PermVehiclesDelete,
		PermDriversRead, PermDriversCreate, PermDriversUpdate, PermDriversSuspend,
		PermTripsRead, PermTripsCreate, PermTripsUpdate, PermTripsAssign,
		PermMaintenanceRead, PermMaintenanceCreate, PermMaintenanceUpdate,
		PermFinanceRead,
		PermSafetyRead, PermSafetyCreate,
		PermAnalyticsRead,
		PermUsersRead,
	},

	RoleDispatcher: {
		PermVehiclesRead,
		PermDriversRead,
		PermTripsRead, PermTripsCreate, PermTripsUpdate, PermTripsAssign,
		PermMaintenanceRead,
		PermAnalyticsRead,
	},

	RoleSafetyOfficer: {
		PermVehiclesRead,
		PermDriversRead, PermDriversSuspend,
		PermTripsRead,
		PermMaintenanceRead, PermMaintenanceCreate, PermMaintenanceUpdate,
		PermSafetyRead, PermSafetyCreate, PermSafetyUpdate,
		PermAnalyticsRead,
	},

	RoleFinance: {
		PermVehiclesRead,
		PermDriversRead,
		PermTripsRead,
		PermFinanceRead, PermFinanceCreate, PermFinanceExport, PermFinanceApprove,
		PermAnalyticsRead,
	},
}

// PermissionsOf returns the permission set for a role. The returned
// slice is a copy; callers may not mutate the matrix. Unknown roles
// yield nil.
func PermissionsOf(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the role holds the permission.
func HasPermission(role Role, permission Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every listed permission.
// An empty list is vacuously satisfied.
func HasAll(role Role, permissions []Permission) bool {
	for _, p := range permissions {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// HasAny reports whether the role holds at least one listed permission.
// An empty list is never satisfied.
func HasAny(role Role, permissions []Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}
