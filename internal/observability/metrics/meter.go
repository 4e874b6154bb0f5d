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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps the OpenTelemetry meter plus the counters the auth
// subsystem reports on.
type Meter struct {
	meter metric.Meter

	logins       metric.Int64Counter
	loginFails   metric.Int64Counter
	authDenials  metric.Int64Counter
	tokenRefresh metric.Int64Counter
}

// New creates a new meter instance. When disabled it still returns a
// usable Meter backed by the noop provider, so callers never nil-check.
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	name := serviceName
	if !cfg.Enabled {
		name = "noop"
	}
	meter := otel.Meter(name)

	m := &Meter{meter: meter}

	var err error
	if m.logins, err = m.counter("auth_logins_total", "Successful logins"); err != nil {
		return nil, err
	}
	if m.loginFails, err = m.counter("auth_login_failures_total", "Failed login attempts"); err != nil {
		return nil, err
	}
	if m.authDenials, err = m.counter("auth_denials_total", "Requests denied by the route guard"); err != nil {
		return nil, err
	}
	if m.tokenRefresh, err = m.counter("auth_token_refreshes_total", "Access tokens minted at the refresh endpoint"); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Meter) counter(name, description string) (metric.Int64Counter, error) {
	c, err := m.meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	return c, nil
}

// RecordLogin counts a successful login by role.
func (m *Meter) RecordLogin(ctx context.Context, role string) {
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}

// RecordLoginFailure counts a failed login attempt.
func (m *Meter) RecordLoginFailure(ctx context.Context) {
	m.loginFails.Add(ctx, 1)
}

// RecordDenial counts an authorization denial with its cause
// ("role_whitelist" or "permissions").
func (m *Meter) RecordDenial(ctx context.Context, cause string) {
	m.authDenials.Add(ctx, 1, metric.WithAttributes(attribute.String("cause", cause)))
}

// RecordRefresh counts an access token minted at the refresh endpoint.
func (m *Meter) RecordRefresh(ctx context.Context) {
	m.tokenRefresh.Add(ctx, 1)
}
