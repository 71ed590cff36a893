package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/medications"
	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/userctx"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotificationNotFound = errors.New("notification not found")
)

const KindMedicationReminder = "medication_reminder"

// Service содержит бизнес-логику уведомлений: входящие пользователя
// и ежеминутные напоминания о приёме лекарств.
type Service struct {
	storage     storage.NotificationsStorage
	medications storage.MedicationsStorage
	settings    storage.SettingsStorage
	config      *config.Config
}

func NewService(
	notificationsStorage storage.NotificationsStorage,
	medicationsStorage storage.MedicationsStorage,
	settingsStorage storage.SettingsStorage,
	cfg *config.Config,
) *Service {
	return &Service{
		storage:     notificationsStorage,
		medications: medicationsStorage,
		settings:    settingsStorage,
		config:      cfg,
	}
}

func (s *Service) List(ctx context.Context, onlyUnread bool, limit int) (*ListNotificationsResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := s.storage.ListNotifications(ctx, userID, onlyUnread, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, toDTO(row))
	}

	return &ListNotificationsResponse{Notifications: dtos}, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return ErrUnauthorized
	}

	if err := s.storage.MarkNotificationRead(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// RunMedicationReminders создаёт напоминания для всех лекарств
// с приёмом в текущую минуту. Вызывается cron-задачей раз в минуту.
// Возвращает число созданных уведомлений.
func (s *Service) RunMedicationReminders(ctx context.Context, now time.Time) (int, error) {
	hhmm := now.Format("1504")

	due, err := s.medications.ListMedicationsDueAt(ctx, hhmm)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, med := range due {
		if !s.remindersEnabled(ctx, med.UserID) {
			continue
		}

		body := fmt.Sprintf("%s — scheduled for %s", med.Name, medications.FormatTime(hhmm))
		if strings.TrimSpace(med.Dose) != "" {
			body = fmt.Sprintf("%s (%s) — scheduled for %s", med.Name, med.Dose, medications.FormatTime(hhmm))
		}

		_, err := s.storage.CreateNotification(ctx, storage.Notification{
			UserID:    med.UserID,
			Kind:      KindMedicationReminder,
			Title:     "Medication reminder",
			Body:      body,
			CreatedAt: now.UTC(),
		})
		if err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func (s *Service) remindersEnabled(ctx context.Context, userID string) bool {
	row, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return s.config.RemindersEnabled
		}
		return false
	}
	return row.RemindersEnabled
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
