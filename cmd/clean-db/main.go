// Copyright 2026 The TourDesk Authors
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

// Command clean-db truncates every business table. Development tool
// only; it refuses to run unless CLEAN_DB_CONFIRM=yes.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/tourdesk/tourdesk/internal/config"
	"github.com/tourdesk/tourdesk/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	if os.Getenv("CLEAN_DB_CONFIRM") != "yes" {
		log.Fatal("refusing to truncate: set CLEAN_DB_CONFIRM=yes")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

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

	fmt.Println("Cleaning database...")

	// Reverse dependency order.
	tables := []string{
		"idempotency_records",
		"exchange_rates",
		"invoice_counters",
		"invoices",
		"booking_items",
		"bookings",
		"hotels",
		"vehicles",
		"restaurants",
		"entrance_fees",
		"daily_tours",
		"transfers",
		"guides",
		"extra_expenses",
		"providers",
		"clients",
		"agents",
		"credentials",
		"users",
		"organizations",
	}

	for _, table := range tables {
		if _, err := db.Pool().Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			log.Printf("Failed to truncate %s: %v", table, err)
			continue
		}
		fmt.Printf("  truncated %s\n", table)
	}

	fmt.Println("Done.")
}
