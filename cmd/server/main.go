// Copyright 2026 The OpenLot Authors
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

	"github.com/openlot/openlot/internal/appuser"
	"github.com/openlot/openlot/internal/audit"
	"github.com/openlot/openlot/internal/catalog"
	"github.com/openlot/openlot/internal/config"
	"github.com/openlot/openlot/internal/content"
	"github.com/openlot/openlot/internal/engage"
	"github.com/openlot/openlot/internal/identity"
	"github.com/openlot/openlot/internal/observability/logger"
	"github.com/openlot/openlot/internal/observability/metrics"
	"github.com/openlot/openlot/internal/observability/tracing"
	"github.com/openlot/openlot/internal/session"
	"github.com/openlot/openlot/internal/storage"
	"github.com/openlot/openlot/internal/store/postgres"
	"github.com/openlot/openlot/internal/tenant"
	transportHTTP "github.com/openlot/openlot/internal/transport/http"
	"github.com/openlot/openlot/internal/wechat"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting openlot catalog platform")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Initialize context
	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
		os.Exit(1)
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
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

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	appUserRepo := postgres.NewAppUserRepository(db)
	scenarioRepo := postgres.NewScenarioRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	trimRepo := postgres.NewTrimRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	contentRepo := postgres.NewContentRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Initialize services
	tenantService := tenant.NewService(tenantRepo, auditLogger)
	identityService := identity.NewService(adminRepo, passwordHasher, auditLogger)
	appUserService := appuser.NewService(appUserRepo, auditLogger)
	catalogService := catalog.NewService(scenarioRepo, categoryRepo, trimRepo)
	engageService := engage.NewService(messageRepo, favoriteRepo, trimRepo)
	contentService := content.NewService(contentRepo)

	sessions := session.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AdminTokenTTL, cfg.Auth.AppTokenTTL)

	wechatClients := wechat.NewRegistry(wechat.RegistryConfig{
		BaseURL:      cfg.WeChat.APIBaseURL,
		Timeout:      cfg.WeChat.RequestTimeout,
		CacheDir:     cfg.WeChat.TokenCacheDir,
		SafetyMargin: cfg.WeChat.TokenSafetyMargin,
	})

	uploadIssuer, err := newUploadIssuer(cfg)
	if err != nil {
		slog.Error("failed to initialize upload-token issuer", logger.Error(err))
		os.Exit(1)
	}

	// First super admin, env driven. A populated admin table makes this a
	// no-op.
	if username := os.Getenv("BOOTSTRAP_ADMIN_USERNAME"); username != "" {
		admin, err := identityService.Bootstrap(ctx, username, os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"))
		if err != nil {
			slog.Error("bootstrap failed", logger.Error(err))
			os.Exit(1)
		}
		if admin != nil {
			slog.Info("bootstrapped first super admin", logger.Username(username))
		}
	}

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		tenantService,
		identityService,
		appUserService,
		catalogService,
		engageService,
		contentService,
		sessions,
		wechatClients,
		uploadIssuer,
		auditLogger,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

// newUploadIssuer selects the configured cloud storage backend.
func newUploadIssuer(cfg *config.Config) (storage.Issuer, error) {
	switch cfg.Storage.Provider {
	case "aliyun":
		return storage.NewAliyunIssuer(storage.AliyunConfig{
			RegionID:        cfg.Storage.Aliyun.RegionID,
			AccessKeyID:     cfg.Storage.Aliyun.AccessKeyID,
			AccessKeySecret: cfg.Storage.Aliyun.AccessKeySecret,
			RoleArn:         cfg.Storage.Aliyun.RoleArn,
			Bucket:          cfg.Storage.Aliyun.Bucket,
			TokenTTL:        cfg.Storage.UploadTokenTTL,
		})
	case "tencent":
		return storage.NewTencentIssuer(storage.TencentConfig{
			Region:    cfg.Storage.Tencent.Region,
			SecretID:  cfg.Storage.Tencent.SecretID,
			SecretKey: cfg.Storage.Tencent.SecretKey,
			Bucket:    cfg.Storage.Tencent.Bucket,
			AppID:     cfg.Storage.Tencent.AppID,
			TokenTTL:  cfg.Storage.UploadTokenTTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}

func runMigrate(cfg *config.Config) error {
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
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
