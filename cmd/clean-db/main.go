package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Development reset tool: truncates every FleetFlow table. Refuses to
// run without an explicit connection string.
func main() {
	ctx := context.Background()

	connStr := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		connStr = os.Args[1]
	}
	if connStr == "" {
		log.Fatal("Usage: clean-db <connection-string> (or set DATABASE_URL)")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	fmt.Println("Cleaning database...")

	// Truncate in reverse dependency order
	tables := []string{
		"incidents",
		"expenses",
		"maintenance_logs",
		"trips",
		"drivers",
		"vehicles",
		"users",
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			log.Printf("Failed to truncate %s: %v", table, err)
			continue
		}
		fmt.Printf("✓ truncated %s\n", table)
	}

	fmt.Println("Done.")
}
