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

import "testing"

// TestPurpose: Validates that every enumerated role maps to a non-empty,
// role-specific permission set.
// Scope: Unit Test
// Security: Authorization matrix totality
// Expected: PermissionsOf returns a non-empty set for each role and nil for unknown roles.
// Test Case ID: RBC-01
func TestRBAC_Matrix_Totality(t *testing.T) {
	for _, role := range Roles {
		perms := PermissionsOf(role)
		if len(perms) == 0 {
			t.Errorf("role %q has no permissions", role)
		}
	}

	if perms := PermissionsOf(Role("intruder")); perms != nil {
		t.Errorf("unknown role should yield nil permissions, got %v", perms)
	}
}

// TestPurpose: Spot-checks the reference matrix to catch accidental edits.
// Scope: Unit Test
// Security: Least-privilege boundaries between roles
// Expected: Role capabilities match the fixed reference table.
// Test Case ID: RBC-02
func TestRBAC_Matrix_ReferenceTable(t *testing.T) {
	cases := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdmin, PermUsersDelete, true},
		{RoleAdmin, PermFinanceApprove, true},
		{RoleFleetManager, PermVehiclesDelete, true},
		{RoleFleetManager, PermFinanceApprove, false},
		{RoleFleetManager, PermUsersRead, true},
		{RoleFleetManager, PermUsersCreate, false},
		{RoleDispatcher, PermTripsAssign, true},
		{RoleDispatcher, PermVehiclesCreate, false},
		{RoleDispatcher, PermFinanceRead, false},
		{RoleSafetyOfficer, PermDriversSuspend, true},
		{RoleSafetyOfficer, PermSafetyUpdate, true},
		{RoleSafetyOfficer, PermTripsCreate, false},
		{RoleFinance, PermFinanceApprove, true},
		{RoleFinance, PermFinanceExport, true},
		{RoleFinance, PermMaintenanceRead, false},
	}

	for _, tc := range cases {
		if got := HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

// TestPurpose: Validates the permission-set algebra used by the route guard.
// Scope: Unit Test
// Security: AND semantics of multi-permission checks
// Expected: HasAll is true iff every permission holds; HasAll implies HasAny
// for non-empty sets; HasAny is false on empty sets.
// Test Case ID: RBC-03
func TestRBAC_Matrix_Algebra(t *testing.T) {
	both := []Permission{PermFinanceRead, PermFinanceApprove}

	if !HasAll(RoleFinance, both) {
		t.Error("finance should hold finance:read and finance:approve")
	}
	if HasAll(RoleFleetManager, both) {
		t.Error("fleet_manager holds finance:read only, HasAll must fail")
	}
	if !HasAny(RoleFleetManager, both) {
		t.Error("fleet_manager holds finance:read, HasAny must pass")
	}

	// HasAll(role, S) implies HasAny(role, S) for non-empty S.
	for _, role := range Roles {
		if HasAll(role, both) && !HasAny(role, both) {
			t.Errorf("role %q: HasAll true but HasAny false", role)
		}
	}

	// Empty sets: HasAll vacuously true, HasAny never.
	if !HasAll(RoleDispatcher, nil) {
		t.Error("HasAll with empty set must be true")
	}
	if HasAny(RoleDispatcher, nil) {
		t.Error("HasAny with empty set must be false")
	}
}

// TestPurpose: Validates role validation and labels used by registration
// and the admin UI.
// Scope: Unit Test
// Expected: ValidRole accepts the five roles and rejects everything else.
// Test Case ID: RBC-04
func TestRBAC_Roles_Validation(t *testing.T) {
	for _, role := range Roles {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	if ValidRole("superuser") {
		t.Error("ValidRole must reject unknown roles")
	}
	if RoleLabel(RoleFleetManager) != "Fleet Manager" {
		t.Errorf("unexpected label %q", RoleLabel(RoleFleetManager))
	}
	if RoleLabel("ghost") != "ghost" {
		t.Error("unknown role label should fall back to the raw value")
	}
}

// TestPurpose: Guards against callers mutating the matrix through the
// slice returned by PermissionsOf.
// Scope: Unit Test
// Security: Matrix immutability at runtime
// Expected: Mutating the returned slice does not affect later lookups.
// Test Case ID: RBC-05
func TestRBAC_Matrix_ReturnsCopy(t *testing.T) {
	perms := PermissionsOf(RoleDispatcher)
	for i := range perms {
		perms[i] = "tampered:tampered"
	}
	if !HasPermission(RoleDispatcher, PermTripsAssign) {
		t.Error("matrix was mutated through PermissionsOf result")
	}
}
