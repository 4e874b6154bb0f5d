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

// Seeds one demo account per role for development environments. The
// shared password comes from SEED_PASSWORD; there is no default.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/fleetflow/fleetflow/internal/audit"
	"github.com/fleetflow/fleetflow/internal/config"
	"github.com/fleetflow/fleetflow/internal/identity"
	"github.com/fleetflow/fleetflow/internal/rbac"
	"github.com/fleetflow/fleetflow/internal/store/postgres"
)

var seedAccounts = []identity.RegisterInput{
	{FullName: "System Admin", Username: "admin", Email: "admin@fleetflow.com", Role: rbac.RoleAdmin},
	{FullName: "Fleet Manager", Username: "manager", Email: "manager@fleetflow.com", Role: rbac.RoleFleetManager},
	{FullName: "John Dispatcher", Username: "dispatch", Email: "dispatch@fleetflow.com", Role: rbac.RoleDispatcher},
	{FullName: "Safety Officer", Username: "safety", Email: "safety@fleetflow.com", Role: rbac.RoleSafetyOfficer},
	{FullName: "Finance Head", Username: "finance", Email: "finance@fleetflow.com", Role: rbac.RoleFinance},
}

func main() {
	ctx := context.Background()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal("SEED_PASSWORD must be set")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	hasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	svc := identity.NewService(postgres.NewUserRepository(db), hasher, audit.NewSlogLogger())

	for _, account := range seedAccounts {
		account.Password = password
		user, err := svc.Register(ctx, account)
		if errors.Is(err, identity.ErrUserAlreadyExists) {
			fmt.Printf("• %s already exists, skipping\n", account.Email)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", account.Email, err)
		}
		fmt.Printf("✓ %s (%s) → %s\n", user.Email, user.Role, user.ID)
	}

	fmt.Println("Seeding complete.")
}
