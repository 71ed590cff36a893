package intakes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/settings"
	"github.com/fdg312/health-navigator/internal/storage/memory"
	"github.com/fdg312/health-navigator/internal/userctx"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	cfg := &config.Config{
		DefaultStepGoal:          10000,
		DefaultSleepGoalHours:    7.5,
		DefaultHydrationGoalMl:   2000,
		IntakesMaxWaterMlPerDay:  8000,
		IntakesWaterDefaultAddMl: 250,
	}
	mem := memory.New()
	settingsService := settings.NewService(mem.GetSettingsStorage(), cfg)
	service := NewService(mem.GetWaterIntakesStorage(), settingsService, cfg)
	return NewHandlers(service)
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(userctx.WithUserID(req.Context(), "user-1"))
}

func TestHandleAddWaterAndToday(t *testing.T) {
	handlers := newTestHandlers(t)

	for _, body := range []string{`{"amount_ml": 300}`, `{"amount_ml": 500}`} {
		rec := httptest.NewRecorder()
		handlers.HandleAddWater(rec, authedRequest(http.MethodPost, "/v1/intakes/water", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handlers.HandleWaterToday(rec, authedRequest(http.MethodGet, "/v1/intakes/water/today", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp WaterTodayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.TotalMl != 800 {
		t.Errorf("expected total 800ml, got %d", resp.TotalMl)
	}
	if resp.GoalMl != 2000 {
		t.Errorf("expected goal 2000ml, got %d", resp.GoalMl)
	}
	if len(resp.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(resp.Entries))
	}
}

func TestHandleAddWaterDefaultPortion(t *testing.T) {
	handlers := newTestHandlers(t)

	rec := httptest.NewRecorder()
	handlers.HandleAddWater(rec, authedRequest(http.MethodPost, "/v1/intakes/water", `{}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var created WaterIntakeDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if created.AmountMl != 250 {
		t.Errorf("expected default portion 250ml, got %d", created.AmountMl)
	}
}

func TestHandleAddWaterDailyLimit(t *testing.T) {
	handlers := newTestHandlers(t)

	// 8000 мл лимит: два раза по 4000 проходят, третий раз — нет.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handlers.HandleAddWater(rec, authedRequest(http.MethodPost, "/v1/intakes/water", `{"amount_ml": 4000}`))
		if rec.Code != http.StatusCreated {
			t.Fatalf("add %d: expected 201, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handlers.HandleAddWater(rec, authedRequest(http.MethodPost, "/v1/intakes/water", `{"amount_ml": 100}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after limit, got %d", rec.Code)
	}
}

func TestHandleAddWaterValidation(t *testing.T) {
	handlers := newTestHandlers(t)

	t.Run("negative amount", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handlers.HandleAddWater(rec, authedRequest(http.MethodPost, "/v1/intakes/water", `{"amount_ml": -10}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/intakes/water", strings.NewReader(`{"amount_ml": 250}`))
		rec := httptest.NewRecorder()
		handlers.HandleAddWater(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
