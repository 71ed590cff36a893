package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/fdg312/health-navigator/internal/ai"
	"github.com/fdg312/health-navigator/internal/assessment"
	"github.com/fdg312/health-navigator/internal/auth"
	"github.com/fdg312/health-navigator/internal/blob"
	"github.com/fdg312/health-navigator/internal/chat"
	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/googlefit"
	"github.com/fdg312/health-navigator/internal/intakes"
	"github.com/fdg312/health-navigator/internal/medications"
	"github.com/fdg312/health-navigator/internal/metrics"
	"github.com/fdg312/health-navigator/internal/notifications"
	"github.com/fdg312/health-navigator/internal/reports"
	"github.com/fdg312/health-navigator/internal/settings"
	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/storage/memory"
	"github.com/fdg312/health-navigator/internal/storage/postgres"
)

type storageBackend interface {
	Close() error
}

// Server — HTTP-сервер приложения: собирает storage, сервисы и
// маршруты и владеет фоновыми процессами (автосинк, напоминания).
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	store          storageBackend
	authMiddleware *auth.Middleware
	metricsService *metrics.Service
	reminder       *notifications.Reminder
	httpServer     *http.Server
}

func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage выбирает бэкенд по STORAGE_MODE. Недоступный Postgres —
// это WARNING и откат на память, чтобы локальная разработка не падала.
func (s *Server) initStorage() {
	if s.config.StorageMode == config.StorageModePostgres && s.config.DatabaseURL != "" {
		pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
		if err == nil {
			log.Println("INFO storage: connected to PostgreSQL")
			s.store = pgStorage
			return
		}
		log.Printf("WARNING: failed to connect to PostgreSQL: %v", err)
		log.Println("WARNING: falling back to in-memory storage")
	} else {
		log.Println("INFO storage: using in-memory storage")
	}
	s.store = memory.New()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth: Google OAuth на входе, собственные JWT дальше.
	tokens := auth.NewTokenStore()
	authService := auth.NewService(s.config, tokens)
	authHandler := auth.NewHandler(authService)
	s.authMiddleware = auth.NewMiddleware(authService)

	s.mux.HandleFunc("GET /v1/auth/google/connect", authHandler.HandleGoogleConnect)
	s.mux.HandleFunc("GET /v1/auth/google/callback", authHandler.HandleGoogleCallback)
	s.mux.HandleFunc("POST /v1/auth/google/token", authHandler.HandleGoogleToken)
	s.mux.HandleFunc("GET /v1/auth/me", authHandler.HandleMe)

	// Settings
	settingsService := settings.NewService(s.getSettingsStorage(), s.config)
	settingsHandler := settings.NewHandler(settingsService)
	s.mux.HandleFunc("GET /v1/settings", settingsHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/settings", settingsHandler.HandlePut)

	// Water intakes
	intakesService := intakes.NewService(s.getWaterIntakesStorage(), settingsService, s.config)
	intakesHandler := intakes.NewHandlers(intakesService)
	s.mux.HandleFunc("POST /v1/intakes/water", intakesHandler.HandleAddWater)
	s.mux.HandleFunc("GET /v1/intakes/water/today", intakesHandler.HandleWaterToday)

	// Medications
	medicationsService := medications.NewService(s.getMedicationsStorage())
	medicationsHandler := medications.NewHandlers(medicationsService)
	s.mux.HandleFunc("GET /v1/medications", medicationsHandler.HandleList)
	s.mux.HandleFunc("POST /v1/medications", medicationsHandler.HandleCreate)
	s.mux.HandleFunc("DELETE /v1/medications/{id}", medicationsHandler.HandleDelete)
	s.mux.HandleFunc("GET /v1/medications/schedule/today", medicationsHandler.HandleTodaySchedule)
	s.mux.HandleFunc("GET /v1/medications/next-dose", medicationsHandler.HandleNextDose)

	// Metrics: Google Fit клиент + синхронизация + score
	fitOpts := []googlefit.Option{}
	if s.config.FitnessBaseURL != "" {
		fitOpts = append(fitOpts, googlefit.WithBaseURL(s.config.FitnessBaseURL))
	}
	fitClient := googlefit.NewClient(fitOpts...)

	s.metricsService = metrics.NewService(fitClient, tokens, intakesService, settingsService, s.config)
	// Сохранённый auto_sync_enabled управляет циклом синхронизации.
	settingsService.SetSyncController(s.metricsService)
	metricsHandler := metrics.NewHandlers(s.metricsService)
	s.mux.HandleFunc("GET /v1/metrics/snapshot", metricsHandler.HandleGetSnapshot)
	s.mux.HandleFunc("GET /v1/metrics/trends", metricsHandler.HandleGetTrends)
	s.mux.HandleFunc("POST /v1/metrics/sync", metricsHandler.HandleSync)
	s.mux.HandleFunc("POST /v1/metrics/autosync", metricsHandler.HandleAutoSync)
	s.mux.HandleFunc("GET /v1/score", metricsHandler.HandleGetScore)

	// AI: оценка самочувствия и чат
	aiProvider := ai.NewProvider(s.config)

	assessmentService := assessment.NewService(s.metricsService, settingsService, aiProvider)
	assessmentHandler := assessment.NewHandler(assessmentService)
	s.mux.HandleFunc("POST /v1/assessment", assessmentHandler.HandleAssess)

	chatService := chat.NewService(s.getChatStorage(), aiProvider, s.config.ChatHistoryTurns)
	chatHandler := chat.NewHandler(chatService)
	s.mux.HandleFunc("GET /v1/chat/messages", chatHandler.HandleListMessages)
	s.mux.HandleFunc("POST /v1/chat/messages", chatHandler.HandleSendMessage)

	// Notifications + напоминания о лекарствах
	notificationsService := notifications.NewService(
		s.getNotificationsStorage(),
		s.getMedicationsStorage(),
		s.getSettingsStorage(),
		s.config,
	)
	notificationsHandler := notifications.NewHandlers(notificationsService)
	s.mux.HandleFunc("GET /v1/notifications", notificationsHandler.HandleList)
	s.mux.HandleFunc("POST /v1/notifications/{id}/read", notificationsHandler.HandleMarkRead)
	s.reminder = notifications.NewReminder(notificationsService)

	// Reports
	blobStore, blobMode, err := blob.NewBlobStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: %v", err)
	}
	log.Printf("INFO blob: reports blob mode: %s", blobMode)

	reportsService := reports.NewService(
		s.getReportsStorage(),
		s.metricsService,
		medicationsService,
		blobStore,
		s.config.Blob.S3.PresignTTLSeconds,
	)
	reportsHandler := reports.NewHandler(reportsService)
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
}

func (s *Server) getMedicationsStorage() storage.MedicationsStorage {
	switch st := s.store.(type) {
	case *memory.MemoryStorage:
		return st.GetMedicationsStorage()
	case *postgres.PostgresStorage:
		return st.GetMedicationsStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

func (s *Server) getChatStorage() storage.ChatStorage {
	switch st := s.store.(type) {
	case *memory.MemoryStorage:
		return st.GetChatStorage()
	case *postgres.PostgresStorage:
		return st.GetChatStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

func (s *Server) getWaterIntakesStorage() storage.WaterIntakesStorage {
	switch st := s.store.(type) {
	case *memory.MemoryStorage:
		return st.GetWaterIntakesStorage()
	case *postgres.PostgresStorage:
		return st.GetWaterIntakesStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

func (s *Server) getNotificationsStorage() storage.NotificationsStorage {
	switch st := s.store.(type) {
	case *memory.MemoryStorage:
		return st.GetNotificationsStorage()
	case *postgres.PostgresStorage:
		return st.GetNotificationsStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

func (s *Server) getSettingsStorage() storage.SettingsStorage {
	switch st := s.store.(type) {
	case *memory.MemoryStorage:
		return st.GetSettingsStorage()
	case *postgres.PostgresStorage:
		return st.GetSettingsStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

func (s *Server) getReportsStorage() storage.ReportsStorage {
	switch st := s.store.(type) {
	case *memory.MemoryStorage:
		return st.GetReportsStorage()
	case *postgres.PostgresStorage:
		return st.GetReportsStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler возвращает полную цепочку: CORS → rate limit → auth → mux.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.RequireAuth(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

func (s *Server) Start() error {
	if s.config.RemindersEnabled {
		if err := s.reminder.Start(); err != nil {
			return fmt.Errorf("failed to start reminders: %w", err)
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	log.Printf("INFO server: listening on http://localhost%s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown останавливает сервер и все фоновые процессы.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}

	if s.config.RemindersEnabled {
		s.reminder.Stop()
	}
	s.metricsService.Close()

	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
