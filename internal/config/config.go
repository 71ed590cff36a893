package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"

	StorageModeMemory   = "memory"
	StorageModePostgres = "postgres"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == "" &&
		strings.TrimSpace(c.PublicBaseURL) == ""
	if allEmpty {
		return "INFO", "s3_not_configured", "S3 is not configured"
	}
	if missing := c.MissingRequired(); len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("S3 config incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return "INFO", "s3_ready", "S3 is configured"
}

func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf(
		"endpoint=%s region=%s bucket=%s access_key=%s public_base_url=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		secretStatus(c.AccessKeyID),
		nonEmptyOrDash(c.PublicBaseURL),
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

func secretStatus(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not_set"
	}
	return "set"
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// Config содержит конфигурацию приложения.
// Собирается один раз в Load и дальше передаётся по ссылке —
// ничего не читает из окружения после старта.
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Storage
	StorageMode       string // memory | postgres
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob (PDF-отчёты)
	Blob BlobConfig

	// Sessions
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// Google OAuth + Fitness API
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FitnessBaseURL     string // override for tests; empty = production API

	// Sync
	SyncIntervalSeconds int

	// Goals (дефолты, перекрываются настройками пользователя)
	DefaultStepGoal        int
	DefaultSleepGoalHours  float64
	DefaultHydrationGoalMl int

	// Intakes
	IntakesMaxWaterMlPerDay  int
	IntakesWaterDefaultAddMl int

	// Chat
	ChatHistoryTurns int

	// AI
	AIMode           string // mock | gemini
	AITimeoutSeconds int
	GeminiAPIKey     string
	GeminiModel      string

	// Reminders
	RemindersEnabled bool

	// Migrations
	RunMigrationsOnStartup bool
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// APP_ENV (fallback to ENV, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	// PORT (default: 8080)
	port := envInt("PORT", 8080)

	// LOG_LEVEL (default: debug)
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// STORAGE_MODE (default: memory без DATABASE_URL, иначе postgres)
	storageMode := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_MODE")))
	if storageMode == "" {
		if runtimeDB != "" {
			storageMode = StorageModePostgres
		} else {
			storageMode = StorageModeMemory
		}
	}
	if storageMode != StorageModeMemory && storageMode != StorageModePostgres {
		log.Printf("WARNING: unknown STORAGE_MODE=%q, fallback to memory", storageMode)
		storageMode = StorageModeMemory
	}
	if storageMode == StorageModePostgres && runtimeDB == "" {
		log.Fatal("DATABASE_URL is required when STORAGE_MODE=postgres")
	}

	// ---------- Migrations ----------
	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 ----------
	blobMode := parseBlobMode("BLOB_MODE", BlobModeLocal)

	// S3_PRESIGN_TTL_SECONDS (default: 900, enforce > 0)
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	s3Cfg := S3Config{
		Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
		Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
		AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		PresignTTLSeconds: s3PresignTTL,
		PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
	}

	// ---------- Sessions ----------
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	// JWT_ISSUER (default: "health-navigator")
	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "health-navigator"
	}

	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)

	// ---------- Google OAuth + Fitness ----------
	googleClientID := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID"))
	googleClientSecret := strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET"))
	googleRedirectURL := strings.TrimSpace(os.Getenv("GOOGLE_REDIRECT_URL"))
	if googleRedirectURL == "" {
		googleRedirectURL = fmt.Sprintf("http://localhost:%d/v1/auth/google/callback", port)
	}
	fitnessBaseURL := strings.TrimSpace(os.Getenv("FITNESS_BASE_URL"))

	// ---------- Sync ----------
	// SYNC_INTERVAL_SECONDS (default: 20)
	syncIntervalSeconds := envInt("SYNC_INTERVAL_SECONDS", 20)
	if syncIntervalSeconds <= 0 {
		syncIntervalSeconds = 20
	}

	// ---------- Goals ----------
	defaultStepGoal := envInt("DEFAULT_STEP_GOAL", 10000)
	defaultSleepGoalHours := envFloat("DEFAULT_SLEEP_GOAL_HOURS", 7.5)
	defaultHydrationGoalMl := envInt("DEFAULT_HYDRATION_GOAL_ML", 2000)

	// INTAKES_MAX_WATER_ML_PER_DAY (default: 8000)
	intakesMaxWaterMlPerDay := envInt("INTAKES_MAX_WATER_ML_PER_DAY", 8000)

	// INTAKES_WATER_DEFAULT_ADD_ML (default: 250)
	intakesWaterDefaultAddMl := envInt("INTAKES_WATER_DEFAULT_ADD_ML", 250)

	// CHAT_HISTORY_TURNS (default: 10)
	chatHistoryTurns := envInt("CHAT_HISTORY_TURNS", 10)
	if chatHistoryTurns <= 0 {
		chatHistoryTurns = 10
	}

	// ---------- AI ----------
	aiMode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if aiMode == "" {
		aiMode = "mock"
	}
	if aiMode != "mock" && aiMode != "gemini" {
		log.Printf("WARNING: unknown AI_MODE=%q, fallback to mock", aiMode)
		aiMode = "mock"
	}

	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 30)
	if aiTimeoutSeconds <= 0 {
		aiTimeoutSeconds = 30
	}

	geminiAPIKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	geminiModel := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if geminiModel == "" {
		geminiModel = "gemini-2.5-flash-preview-09-2025"
	}

	if aiMode == "gemini" && geminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required when AI_MODE=gemini")
	}

	// ---------- Reminders ----------
	remindersEnabled := true
	if raw := strings.TrimSpace(os.Getenv("REMINDERS_ENABLED")); raw != "" {
		remindersEnabled = parseBoolEnv("REMINDERS_ENABLED")
	}

	return &Config{
		Env:      env,
		Port:     port,
		LogLevel: logLevel,

		StorageMode:       storageMode,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: BlobConfig{Mode: blobMode, S3: s3Cfg},

		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,

		GoogleClientID:     googleClientID,
		GoogleClientSecret: googleClientSecret,
		GoogleRedirectURL:  googleRedirectURL,
		FitnessBaseURL:     fitnessBaseURL,

		SyncIntervalSeconds: syncIntervalSeconds,

		DefaultStepGoal:        defaultStepGoal,
		DefaultSleepGoalHours:  defaultSleepGoalHours,
		DefaultHydrationGoalMl: defaultHydrationGoalMl,

		IntakesMaxWaterMlPerDay:  intakesMaxWaterMlPerDay,
		IntakesWaterDefaultAddMl: intakesWaterDefaultAddMl,

		ChatHistoryTurns: chatHistoryTurns,

		AIMode:           aiMode,
		AITimeoutSeconds: aiTimeoutSeconds,
		GeminiAPIKey:     geminiAPIKey,
		GeminiModel:      geminiModel,

		RemindersEnabled: remindersEnabled,

		RunMigrationsOnStartup: runMigrationsOnStartup,
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
