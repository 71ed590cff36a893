package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/storage"
	"github.com/fdg312/health-navigator/internal/storage/memory"
	"github.com/fdg312/health-navigator/internal/userctx"
)

func newTestService(t *testing.T) (*Service, *memory.MemoryStorage) {
	t.Helper()
	mem := memory.New()
	cfg := &config.Config{RemindersEnabled: true}
	service := NewService(
		mem.GetNotificationsStorage(),
		mem.GetMedicationsStorage(),
		mem.GetSettingsStorage(),
		cfg,
	)
	return service, mem
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(userctx.WithUserID(req.Context(), "user-1"))
}

func TestHandleListAndMarkRead(t *testing.T) {
	service, mem := newTestService(t)
	handlers := NewHandlers(service)

	created, err := mem.GetNotificationsStorage().CreateNotification(context.Background(), storage.Notification{
		UserID:    "user-1",
		Kind:      KindMedicationReminder,
		Title:     "Medication reminder",
		Body:      "Aspirin — scheduled for 8:00 AM",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}

	rec := httptest.NewRecorder()
	handlers.HandleList(rec, authedRequest(http.MethodGet, "/v1/notifications?unread=1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	var resp ListNotificationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Notifications) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", len(resp.Notifications))
	}
	if resp.Notifications[0].ReadAt != nil {
		t.Error("expected read_at to be empty for unread notification")
	}

	markReq := authedRequest(http.MethodPost, "/v1/notifications/"+created.ID.String()+"/read")
	markReq.SetPathValue("id", created.ID.String())
	markRec := httptest.NewRecorder()
	handlers.HandleMarkRead(markRec, markReq)
	if markRec.Code != http.StatusNoContent {
		t.Fatalf("mark read: expected 204, got %d", markRec.Code)
	}

	rec = httptest.NewRecorder()
	handlers.HandleList(rec, authedRequest(http.MethodGet, "/v1/notifications?unread=1"))
	resp = ListNotificationsResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Notifications) != 0 {
		t.Errorf("expected no unread notifications after mark read, got %d", len(resp.Notifications))
	}
}

func TestHandleMarkReadNotFound(t *testing.T) {
	service, _ := newTestService(t)
	handlers := NewHandlers(service)

	req := authedRequest(http.MethodPost, "/v1/notifications/6a5e9f3c-1a6c-4e57-9a2e-000000000000/read")
	req.SetPathValue("id", "6a5e9f3c-1a6c-4e57-9a2e-000000000000")
	rec := httptest.NewRecorder()
	handlers.HandleMarkRead(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRunMedicationReminders(t *testing.T) {
	service, mem := newTestService(t)

	_, err := mem.GetMedicationsStorage().CreateMedication(context.Background(), storage.Medication{
		UserID: "user-1",
		Name:   "Aspirin",
		Dose:   "100mg",
		Times:  []string{"0800", "2000"},
	})
	if err != nil {
		t.Fatalf("create medication: %v", err)
	}
	_, err = mem.GetMedicationsStorage().CreateMedication(context.Background(), storage.Medication{
		UserID: "user-2",
		Name:   "Vitamin D",
		Times:  []string{"0900"},
	})
	if err != nil {
		t.Fatalf("create medication: %v", err)
	}

	// 08:00 — только аспирин user-1.
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	created, err := service.RunMedicationReminders(context.Background(), at)
	if err != nil {
		t.Fatalf("run reminders: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 reminder, got %d", created)
	}

	rows, err := mem.GetNotificationsStorage().ListNotifications(context.Background(), "user-1", false, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 notification for user-1, got %d", len(rows))
	}
	if rows[0].Kind != KindMedicationReminder {
		t.Errorf("unexpected kind %q", rows[0].Kind)
	}
	if rows[0].Body != "Aspirin (100mg) — scheduled for 8:00 AM" {
		t.Errorf("unexpected body %q", rows[0].Body)
	}

	// В минуту без приёмов ничего не создаётся.
	created, err = service.RunMedicationReminders(context.Background(), at.Add(time.Minute))
	if err != nil {
		t.Fatalf("run reminders: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no reminders at 08:01, got %d", created)
	}
}

func TestRunMedicationRemindersRespectsToggle(t *testing.T) {
	service, mem := newTestService(t)

	_, err := mem.GetMedicationsStorage().CreateMedication(context.Background(), storage.Medication{
		UserID: "user-1",
		Name:   "Aspirin",
		Times:  []string{"0800"},
	})
	if err != nil {
		t.Fatalf("create medication: %v", err)
	}

	_, err = mem.GetSettingsStorage().UpsertSettings(context.Background(), storage.UserSettings{
		UserID:           "user-1",
		StepGoal:         10000,
		SleepGoalHours:   7.5,
		HydrationGoalMl:  2000,
		RemindersEnabled: false,
	})
	if err != nil {
		t.Fatalf("upsert settings: %v", err)
	}

	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	created, err := service.RunMedicationReminders(context.Background(), at)
	if err != nil {
		t.Fatalf("run reminders: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no reminders with toggle off, got %d", created)
	}
}
