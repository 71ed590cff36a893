package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/storage/memory"
	"github.com/fdg312/health-navigator/internal/userctx"
)

func testConfig() *config.Config {
	return &config.Config{
		DefaultStepGoal:        10000,
		DefaultSleepGoalHours:  7.5,
		DefaultHydrationGoalMl: 2000,
		RemindersEnabled:       true,
	}
}

func TestSettingsHandlersGetDefault(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetSettingsStorage(), testConfig())
	handler := NewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
	req = req.WithContext(userctx.WithUserID(context.Background(), "user-a"))
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp SettingsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}

	if !resp.IsDefault {
		t.Fatalf("expected is_default=true")
	}
	if resp.Settings.StepGoal != 10000 {
		t.Fatalf("expected default step_goal=10000, got %d", resp.Settings.StepGoal)
	}
	if resp.Settings.SleepGoalHours != 7.5 {
		t.Fatalf("expected default sleep_goal_hours=7.5, got %v", resp.Settings.SleepGoalHours)
	}
	if resp.Settings.AutoSyncEnabled {
		t.Fatal("expected auto_sync_enabled=false by default")
	}
}

func TestSettingsHandlersPutAndGet(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetSettingsStorage(), testConfig())
	handler := NewHandler(service)

	body, _ := json.Marshal(SettingsDTO{
		StepGoal:         8000,
		SleepGoalHours:   8,
		HydrationGoalMl:  2500,
		AutoSyncEnabled:  true,
		RemindersEnabled: false,
	})

	putReq := httptest.NewRequest(http.MethodPut, "/v1/settings", bytes.NewReader(body))
	putReq = putReq.WithContext(userctx.WithUserID(context.Background(), "user-a"))
	putRec := httptest.NewRecorder()
	handler.HandlePut(putRec, putReq)

	if putRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", putRec.Code, putRec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
	getReq = getReq.WithContext(userctx.WithUserID(context.Background(), "user-a"))
	getRec := httptest.NewRecorder()
	handler.HandleGet(getRec, getReq)

	var resp SettingsResponse
	if err := json.NewDecoder(getRec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}

	if resp.IsDefault {
		t.Fatal("expected is_default=false after upsert")
	}
	if resp.Settings.StepGoal != 8000 {
		t.Fatalf("expected step_goal=8000, got %d", resp.Settings.StepGoal)
	}
	if !resp.Settings.AutoSyncEnabled {
		t.Fatal("expected auto_sync_enabled=true after upsert")
	}
	if resp.Settings.RemindersEnabled {
		t.Fatal("expected reminders_enabled=false after upsert")
	}
}

func TestSettingsHandlersPutValidation(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetSettingsStorage(), testConfig())
	handler := NewHandler(service)

	body, _ := json.Marshal(SettingsDTO{
		StepGoal:        100, // below minimum
		SleepGoalHours:  8,
		HydrationGoalMl: 2000,
	})

	req := httptest.NewRequest(http.MethodPut, "/v1/settings", bytes.NewReader(body))
	req = req.WithContext(userctx.WithUserID(context.Background(), "user-a"))
	rec := httptest.NewRecorder()
	handler.HandlePut(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSettingsHandlersUnauthorized(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetSettingsStorage(), testConfig())
	handler := NewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

type autoSyncToggle struct {
	userID  string
	enabled bool
}

type stubSyncController struct {
	toggles []autoSyncToggle
}

func (c *stubSyncController) ApplyAutoSync(userID string, enabled bool) {
	c.toggles = append(c.toggles, autoSyncToggle{userID: userID, enabled: enabled})
}

func TestSettingsHandlersPutAppliesAutoSync(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetSettingsStorage(), testConfig())
	controller := &stubSyncController{}
	service.SetSyncController(controller)
	handler := NewHandler(service)

	put := func(enabled bool) {
		t.Helper()
		body, _ := json.Marshal(SettingsDTO{
			StepGoal:        8000,
			SleepGoalHours:  8,
			HydrationGoalMl: 2500,
			AutoSyncEnabled: enabled,
		})
		req := httptest.NewRequest(http.MethodPut, "/v1/settings", bytes.NewReader(body))
		req = req.WithContext(userctx.WithUserID(context.Background(), "user-a"))
		rec := httptest.NewRecorder()
		handler.HandlePut(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	put(true)
	put(false)

	want := []autoSyncToggle{
		{userID: "user-a", enabled: true},
		{userID: "user-a", enabled: false},
	}
	if len(controller.toggles) != len(want) {
		t.Fatalf("expected %d toggle calls, got %d", len(want), len(controller.toggles))
	}
	for i := range want {
		if controller.toggles[i] != want[i] {
			t.Errorf("toggle %d: expected %+v, got %+v", i, want[i], controller.toggles[i])
		}
	}
}

func TestSettingsServiceSetAutoSyncKeepsGoals(t *testing.T) {
	mem := memory.New()
	service := NewService(mem.GetSettingsStorage(), testConfig())

	if err := service.SetAutoSync(context.Background(), "user-a", true); err != nil {
		t.Fatalf("set auto sync: %v", err)
	}

	resp, err := service.GetOrDefault(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if !resp.Settings.AutoSyncEnabled {
		t.Fatal("expected auto_sync_enabled=true")
	}
	// Флаг ложится поверх дефолтов, цели не меняются.
	if resp.Settings.StepGoal != 10000 || resp.Settings.HydrationGoalMl != 2000 {
		t.Fatalf("expected default goals to survive, got %+v", resp.Settings)
	}
}
