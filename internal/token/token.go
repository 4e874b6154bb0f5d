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

// Package token issues and verifies the signed access and refresh
// tokens that carry identity claims between requests.
//
// Two independent HS256 secrets separate the blast radius of a leaked
// access token (short TTL, site-wide) from a leaked refresh token
// (long TTL, accepted only at the refresh endpoint). Signature
// verification is the only source of truth for authenticity;
// DecodeUnsafe exists purely for cheap, non-authoritative gating at
// the edge and must never be used to authorize an action.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/golang-jwt/jwt/v5"
)

// Verification errors
var (
	// ErrTokenExpired marks a correctly signed token whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid marks every other verification failure: bad
	// signature, malformed payload, wrong signing method.
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessClaims is the claim set embedded in an access token. The role
// is fixed for the token's lifetime; role changes and suspensions are
// observed at the next refresh or re-login.
type AccessClaims struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
	Name   string    `json:"name"`
	jwt.RegisteredClaims
}

// RefreshClaims is the narrower claim set of a refresh token. It
// deliberately omits role and name: the refresh endpoint re-reads the
// user's current state before minting a new access token.
type RefreshClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Pair bundles the two tokens returned by login and register.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Service signs and verifies tokens. Pure, stateless and safe for
// concurrent use.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewService creates a token service with the two signing secrets and
// their TTLs. Secret validation happens at config load; by the time a
// Service exists both secrets are non-empty.
func NewService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessTTL returns the configured access token lifetime. The cookie
// layer uses it to align cookie MaxAge with token expiry.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs an access token for the identity.
func (s *Service) IssueAccessToken(userID, email string, role rbac.Role, name string) (string, error) {
	now := s.now().UTC()
	claims := AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a refresh token carrying only userID and email.
func (s *Service) IssueRefreshToken(userID, email string) (string, error) {
	now := s.now().UTC()
	claims := RefreshClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, nil
}

// IssuePair issues an access/refresh token pair for the identity.
func (s *Service) IssuePair(userID, email string, role rbac.Role, name string) (Pair, error) {
	access, err := s.IssueAccessToken(userID, email, role, name)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.IssueRefreshToken(userID, email)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken cryptographically verifies signature and expiry
// against the access secret and returns the embedded claims.
func (s *Service) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(raw, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken verifies against the refresh secret. Access
// tokens presented here fail on signature, not by accident of shape.
func (s *Service) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(raw, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) verify(raw string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// DecodeUnsafe decodes the access token payload WITHOUT verifying the
// signature. It exists for low-cost pre-checks at the edge (deciding
// whether to redirect an apparently-authenticated browser) and returns
// nil on any malformed input. Never use its result to authorize.
func DecodeUnsafe(raw string) *AccessClaims {
	claims := &AccessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}
	return claims
}
