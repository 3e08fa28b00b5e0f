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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tourdesk/tourdesk/internal/audit"
	"github.com/tourdesk/tourdesk/internal/billing"
	"github.com/tourdesk/tourdesk/internal/booking"
	"github.com/tourdesk/tourdesk/internal/config"
	"github.com/tourdesk/tourdesk/internal/directory"
	"github.com/tourdesk/tourdesk/internal/idempotency"
	"github.com/tourdesk/tourdesk/internal/identity"
	"github.com/tourdesk/tourdesk/internal/observability/logger"
	"github.com/tourdesk/tourdesk/internal/observability/metrics"
	"github.com/tourdesk/tourdesk/internal/observability/tracing"
	"github.com/tourdesk/tourdesk/internal/report"
	"github.com/tourdesk/tourdesk/internal/store/postgres"
	"github.com/tourdesk/tourdesk/internal/supplier"
	"github.com/tourdesk/tourdesk/internal/tenant"
	transportHTTP "github.com/tourdesk/tourdesk/internal/transport/http"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting tourdesk api")

	ctx := context.Background()

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
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
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Repositories
	orgRepo := postgres.NewOrganizationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	agentRepo := postgres.NewAgentRepository(db)
	providerRepo := postgres.NewProviderRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	rateRepo := postgres.NewExchangeRateRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	// Idempotency store: Redis when configured, otherwise the
	// Postgres-backed store swept by cmd/cleanup.
	var idemStore idempotency.Store
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		idemStore = idempotency.NewRedisStore(client)
		slog.Info("using redis idempotency store")
	} else {
		idemStore = postgres.NewIdempotencyRepository(db)
		slog.Info("using postgres idempotency store")
	}

	// Helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Auth.Argon2Memory,
		cfg.Auth.Argon2Iterations,
		cfg.Auth.Argon2Parallelism,
		cfg.Auth.Argon2SaltLength,
		cfg.Auth.Argon2KeyLength,
	)
	tokenIssuer := identity.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenLifetime)

	// Services
	tenantService := tenant.NewService(orgRepo, auditLogger)
	identityService := identity.NewService(
		userRepo,
		passwordHasher,
		auditLogger,
		cfg.Auth.LockoutMaxAttempts,
		cfg.Auth.LockoutDuration,
	)
	directoryService := directory.NewService(clientRepo, agentRepo, auditLogger)
	supplierService := supplier.NewService(supplier.Repositories{
		Providers:     providerRepo,
		Hotels:        postgres.NewHotelRepository(db),
		Vehicles:      postgres.NewVehicleRepository(db),
		Restaurants:   postgres.NewRestaurantRepository(db),
		EntranceFees:  postgres.NewEntranceFeeRepository(db),
		DailyTours:    postgres.NewDailyTourRepository(db),
		Transfers:     postgres.NewTransferRepository(db),
		Guides:        postgres.NewGuideRepository(db),
		ExtraExpenses: postgres.NewExtraExpenseRepository(db),
	}, auditLogger)
	bookingService := booking.NewService(bookingRepo, directoryService, auditLogger)
	billingService := billing.NewService(invoiceRepo, rateRepo, bookingService, auditLogger)
	reportService := report.NewService(reportRepo, tenantService, billingService)

	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	handler := transportHTTP.NewHandler(
		tenantService,
		identityService,
		tokenIssuer,
		directoryService,
		supplierService,
		bookingService,
		billingService,
		reportService,
		auditLogger,
		idemStore,
		cfg.Idempotency.TTL,
	)

	router := transportHTTP.NewRouter(handler, rateLimiter)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", logger.Error(err))
	}

	slog.Info("server stopped")
}
