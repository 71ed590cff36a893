package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/dbmigrate"
	"github.com/fdg312/health-navigator/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if cfg.RunMigrationsOnStartup {
		target, err := dbmigrate.SelectTarget(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}
		log.Printf("INFO startup migrations: command=up using=%s", target.Source)
		if err := dbmigrate.Run("up", target, dbmigrate.DefaultMigrationsDir); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Println("INFO startup migrations: completed")
	}

	validateProductionConfig(cfg)

	server := httpserver.New(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("FATAL server: %v", err)
	case sig := <-stop:
		log.Printf("INFO server: received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("WARNING: shutdown finished with error: %v", err)
	}
	log.Println("INFO server: stopped")
}

// printStartupBanner пишет в лог итоговую конфигурацию.
// Секреты не печатаются — только признак "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Println("======= Health Navigator API =======")
	log.Printf("  env                = %s", cfg.Env)
	log.Printf("  port               = %d", cfg.Port)

	log.Println("---- storage ----")
	log.Printf("  storage_mode       = %s", cfg.StorageMode)
	log.Printf("  database_url       = %s", setOrNot(cfg.DatabaseURL))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	if cfg.RunMigrationsOnStartup && cfg.DatabaseURLDirect == "" {
		log.Printf("  migrations_via     = (will fail: DATABASE_URL_DIRECT not set)")
	}

	log.Println("---- auth ----")
	log.Printf("  jwt_secret         = %s", setOrNot(cfg.JWTSecret))
	log.Printf("  google_client_id   = %s", setOrNot(cfg.GoogleClientID))
	log.Printf("  google_redirect    = %s", nonEmptyOrDash(cfg.GoogleRedirectURL))

	log.Println("---- blob ----")
	log.Printf("  blob_mode          = %s", cfg.Blob.Mode)
	if cfg.Blob.Mode != config.BlobModeLocal {
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	}

	log.Println("---- ai ----")
	log.Printf("  ai_mode            = %s", cfg.AIMode)
	if cfg.AIMode == "gemini" {
		log.Printf("  gemini_model       = %s", cfg.GeminiModel)
		log.Printf("  gemini_api_key     = %s", setOrNot(cfg.GeminiAPIKey))
	}

	log.Println("---- background ----")
	log.Printf("  reminders_enabled  = %t", cfg.RemindersEnabled)
	log.Printf("  sync_interval      = %ds", cfg.SyncIntervalSeconds)
	log.Println("====================================")
}

// validateProductionConfig делает фатальные проверки для staging/prod.
func validateProductionConfig(cfg *config.Config) {
	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL blob: BLOB_MODE=s3 but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	isProd := cfg.Env == "staging" || cfg.Env == "prod"
	if !isProd {
		return
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == "change_me" {
		log.Fatal("FATAL auth: JWT_SECRET must be set to a real value in staging/prod")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Fatal("FATAL auth: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required in staging/prod")
	}
	if cfg.StorageMode == config.StorageModeMemory {
		log.Println("WARNING: STORAGE_MODE=memory in staging/prod, all data is lost on restart")
	}
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
