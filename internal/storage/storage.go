package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается всеми хранилищами, когда запись не найдена.
var ErrNotFound = errors.New("not found")

// Medication — лекарство пользователя.
// Times хранятся как "HHMM" по возрастанию.
type Medication struct {
	ID        uuid.UUID
	UserID    string
	Name      string
	Dose      string
	Times     []string
	CreatedAt time.Time
}

// MedicationsStorage — интерфейс для работы с лекарствами
type MedicationsStorage interface {
	// CreateMedication сохраняет лекарство
	CreateMedication(ctx context.Context, med Medication) (Medication, error)

	// ListMedications возвращает лекарства пользователя, старые первыми
	ListMedications(ctx context.Context, userID string) ([]Medication, error)

	// DeleteMedication удаляет лекарство пользователя
	DeleteMedication(ctx context.Context, userID string, id uuid.UUID) error

	// ListMedicationsDueAt возвращает лекарства всех пользователей
	// с приёмом в указанную минуту ("HHMM"). Используется напоминаниями.
	ListMedicationsDueAt(ctx context.Context, hhmm string) ([]Medication, error)
}

// ChatMessage — сохранённое сообщение чата.
// ClientMsgID — клиентский временный идентификатор: по нему клиент
// сверяет оптимистично показанное сообщение с авторитетной записью.
type ChatMessage struct {
	ID          uuid.UUID
	UserID      string
	Role        string // "user" или "model"
	Content     string
	ClientMsgID string
	Sources     []ChatSource
	CreatedAt   time.Time
}

// ChatSource — веб-источник из grounding-метаданных ответа модели.
type ChatSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatStorage — интерфейс для хранения сообщений чата.
type ChatStorage interface {
	// InsertChatMessage сохраняет сообщение и возвращает запись с ID
	InsertChatMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error)

	// ListChatMessages возвращает последние limit сообщений пользователя
	// в хронологическом порядке
	ListChatMessages(ctx context.Context, userID string, limit int) ([]ChatMessage, error)
}

// WaterIntake — одна запись о выпитой воде.
type WaterIntake struct {
	ID        uuid.UUID
	UserID    string
	AmountMl  int
	CreatedAt time.Time
}

// WaterIntakesStorage — интерфейс для записей о воде
type WaterIntakesStorage interface {
	// AddWaterIntake добавляет запись
	AddWaterIntake(ctx context.Context, intake WaterIntake) (WaterIntake, error)

	// ListWaterIntakes возвращает записи за период, старые первыми
	ListWaterIntakes(ctx context.Context, userID string, from, to time.Time) ([]WaterIntake, error)

	// WaterTotal возвращает суммарный объём за период в миллилитрах
	WaterTotal(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// Notification — уведомление пользователя.
type Notification struct {
	ID        uuid.UUID
	UserID    string
	Kind      string // "medication_reminder", "sync"
	Title     string
	Body      string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// NotificationsStorage — интерфейс для уведомлений
type NotificationsStorage interface {
	// CreateNotification сохраняет уведомление
	CreateNotification(ctx context.Context, n Notification) (Notification, error)

	// ListNotifications возвращает уведомления пользователя, новые первыми
	ListNotifications(ctx context.Context, userID string, onlyUnread bool, limit int) ([]Notification, error)

	// MarkNotificationRead помечает уведомление прочитанным
	MarkNotificationRead(ctx context.Context, userID string, id uuid.UUID) error
}

// UserSettings — цели и переключатели пользователя.
type UserSettings struct {
	UserID           string
	StepGoal         int
	SleepGoalHours   float64
	HydrationGoalMl  int
	AutoSyncEnabled  bool
	RemindersEnabled bool
	UpdatedAt        time.Time
}

// SettingsStorage — интерфейс для настроек
type SettingsStorage interface {
	// GetSettings возвращает настройки или ErrNotFound
	GetSettings(ctx context.Context, userID string) (UserSettings, error)

	// UpsertSettings сохраняет настройки целиком
	UpsertSettings(ctx context.Context, settings UserSettings) (UserSettings, error)
}

// ReportMeta — метаданные сгенерированного PDF-отчёта.
// Файл лежит в blob-хранилище по ключу ObjectKey; в локальном режиме
// ObjectKey пустой и байты хранятся прямо в Data.
type ReportMeta struct {
	ID        uuid.UUID
	UserID    string
	ObjectKey string
	Data      []byte
	SizeBytes int64
	CreatedAt time.Time
}

// ReportsStorage — интерфейс для метаданных отчётов
type ReportsStorage interface {
	// CreateReport сохраняет метаданные отчёта
	CreateReport(ctx context.Context, report ReportMeta) (ReportMeta, error)

	// GetReport возвращает отчёт пользователя по ID
	GetReport(ctx context.Context, userID string, id uuid.UUID) (ReportMeta, error)

	// ListReports возвращает отчёты пользователя, новые первыми
	ListReports(ctx context.Context, userID string, limit int) ([]ReportMeta, error)
}
