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

	"github.com/fleetflow/fleetflow/internal/rbac"
)

type contextKey string

const (
	// identityKey carries a signature-verified identity set by the guard.
	identityKey contextKey = "identity"

	// gateIdentityKey carries the identity decoded WITHOUT verification
	// at the edge. Routing hint only; never use it for authorization.
	gateIdentityKey contextKey = "gate_identity"
)

// Identity is the caller identity attached to a request context.
type Identity struct {
	UserID string
	Email  string
	Role   rbac.Role
	Name   string
}

// GetIdentity retrieves the verified identity from context. The second
// return is false on routes the guard did not wrap.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetGateIdentity retrieves the unverified edge-decoded identity.
func GetGateIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(gateIdentityKey).(Identity)
	return id, ok
}
