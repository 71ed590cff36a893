package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/googlefit"
	"github.com/fdg312/health-navigator/internal/httpretry"
	"github.com/fdg312/health-navigator/internal/settings"
	"github.com/fdg312/health-navigator/internal/storage/memory"
	"github.com/fdg312/health-navigator/internal/userctx"
)

type stubFit struct {
	steps    googlefit.StepsResult
	calories googlefit.CaloriesResult
	distance googlefit.DistanceResult
	sleep    googlefit.SleepResult
	hr       googlefit.HeartRateResult
	series   googlefit.SeriesResult

	errs map[string]error
}

func (f *stubFit) fetchErr(name string) error {
	if f.errs == nil {
		return nil
	}
	return f.errs[name]
}

func (f *stubFit) StepsToday(ctx context.Context, token string, now time.Time) (googlefit.StepsResult, error) {
	return f.steps, f.fetchErr("steps")
}

func (f *stubFit) CaloriesToday(ctx context.Context, token string, now time.Time) (googlefit.CaloriesResult, error) {
	return f.calories, f.fetchErr("calories")
}

func (f *stubFit) DistanceToday(ctx context.Context, token string, now time.Time) (googlefit.DistanceResult, error) {
	return f.distance, f.fetchErr("distance")
}

func (f *stubFit) SleepLastNight(ctx context.Context, token string, now time.Time) (googlefit.SleepResult, error) {
	return f.sleep, f.fetchErr("sleep")
}

func (f *stubFit) HeartRate(ctx context.Context, token string, now time.Time) (googlefit.HeartRateResult, error) {
	return f.hr, f.fetchErr("heart_rate")
}

func (f *stubFit) StepsIntraday(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("steps_intraday")
}

func (f *stubFit) DistanceIntraday(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("distance_intraday")
}

func (f *stubFit) StepsWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("steps_weekly")
}

func (f *stubFit) CaloriesWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("calories_weekly")
}

func (f *stubFit) DistanceWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("distance_weekly")
}

func (f *stubFit) HeartRateWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("heart_rate_weekly")
}

func (f *stubFit) SleepWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error) {
	return f.series, f.fetchErr("sleep_weekly")
}

type stubTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newStubTokens(userID, token string) *stubTokens {
	return &stubTokens{tokens: map[string]string{userID: token}}
}

func (s *stubTokens) FitnessToken(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[userID]
	return token, ok
}

func (s *stubTokens) ClearFitnessToken(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
}

type stubHydration struct {
	totalMl int
}

func (s *stubHydration) WaterTotalToday(ctx context.Context, userID string) (int, error) {
	return s.totalMl, nil
}

func intPtr(v int) *int { return &v }

func healthyStub() *stubFit {
	return &stubFit{
		steps:    googlefit.StepsResult{Steps: 5000, Completeness: googlefit.Complete},
		calories: googlefit.CaloriesResult{Calories: 300, Completeness: googlefit.Complete},
		distance: googlefit.DistanceResult{Km: 2.5, Completeness: googlefit.Complete},
		sleep:    googlefit.SleepResult{Hours: 8, Completeness: googlefit.Complete},
		hr:       googlefit.HeartRateResult{Current: intPtr(70), Completeness: googlefit.Complete},
		series: googlefit.SeriesResult{
			Points:       []googlefit.TrendPoint{{Label: "Mon", Value: 1}, {Label: "Tue", Value: 2}},
			Completeness: googlefit.Complete,
		},
	}
}

func newTestService(fit fitnessAPI, tokens tokenSource) *Service {
	cfg := &config.Config{
		SyncIntervalSeconds:    20,
		DefaultStepGoal:        10000,
		DefaultSleepGoalHours:  7.5,
		DefaultHydrationGoalMl: 2000,
	}
	mem := memory.New()
	goals := settings.NewService(mem.GetSettingsStorage(), cfg)
	return NewService(fit, tokens, &stubHydration{totalMl: 1000}, goals, cfg)
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(userctx.WithUserID(req.Context(), "user-1"))
}

func TestSyncAndSnapshot(t *testing.T) {
	service := newTestService(healthyStub(), newStubTokens("user-1", "fit-token"))
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleSync(rec, authedRequest(http.MethodPost, "/v1/metrics/sync", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("sync: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var syncResp SyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &syncResp); err != nil {
		t.Fatalf("unmarshal sync response: %v", err)
	}
	if syncResp.Outcome != OutcomeSynced {
		t.Errorf("expected outcome synced, got %q", syncResp.Outcome)
	}
	if len(syncResp.Messages) != 0 {
		t.Errorf("expected no failure messages, got %v", syncResp.Messages)
	}

	rec = httptest.NewRecorder()
	handlers.HandleGetSnapshot(rec, authedRequest(http.MethodGet, "/v1/metrics/snapshot", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot: expected 200, got %d", rec.Code)
	}

	var snapResp SnapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &snapResp); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snapResp.Snapshot.Steps != 5000 || snapResp.Snapshot.StepsStatus != "complete" {
		t.Errorf("unexpected steps in snapshot: %+v", snapResp.Snapshot)
	}
	if snapResp.Snapshot.SleepHours != 8 {
		t.Errorf("expected 8h sleep, got %v", snapResp.Snapshot.SleepHours)
	}
	if snapResp.Snapshot.HeartRate == nil || *snapResp.Snapshot.HeartRate != 70 {
		t.Errorf("expected heart rate 70, got %v", snapResp.Snapshot.HeartRate)
	}
	if snapResp.Score == nil {
		t.Fatal("expected score in snapshot response")
	}

	// steps 10 + sleep 20 + hydration 10 + calories 6 + distance 5 + hr 17.5
	if snapResp.Score.Score != 69 {
		t.Errorf("expected score 69, got %d", snapResp.Score.Score)
	}

	rec = httptest.NewRecorder()
	handlers.HandleGetTrends(rec, authedRequest(http.MethodGet, "/v1/metrics/trends", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("trends: expected 200, got %d", rec.Code)
	}

	var trends TrendsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &trends); err != nil {
		t.Fatalf("unmarshal trends: %v", err)
	}
	if len(trends.StepsWeekly) != 2 {
		t.Errorf("expected 2 weekly points, got %d", len(trends.StepsWeekly))
	}
}

func TestSyncNoData(t *testing.T) {
	service := newTestService(&stubFit{}, newStubTokens("user-1", "fit-token"))
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleSync(rec, authedRequest(http.MethodPost, "/v1/metrics/sync", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp SyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Outcome != OutcomeNoData {
		t.Errorf("expected outcome no_data, got %q", resp.Outcome)
	}

	rec = httptest.NewRecorder()
	handlers.HandleGetSnapshot(rec, authedRequest(http.MethodGet, "/v1/metrics/snapshot", ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before a successful sync, got %d", rec.Code)
	}
}

func TestSyncReauthOn401(t *testing.T) {
	fit := healthyStub()
	fit.errs = map[string]error{
		"steps": &httpretry.HTTPError{StatusCode: http.StatusUnauthorized},
	}
	tokens := newStubTokens("user-1", "expired-token")

	service := newTestService(fit, tokens)
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleSync(rec, authedRequest(http.MethodPost, "/v1/metrics/sync", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	if _, ok := tokens.FitnessToken("user-1"); ok {
		t.Error("expected fitness token to be cleared after 401")
	}
}

func TestSyncToleratesPartialFailure(t *testing.T) {
	fit := healthyStub()
	fit.errs = map[string]error{
		"sleep": errors.New("connection reset"),
	}

	service := newTestService(fit, newStubTokens("user-1", "fit-token"))
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleSync(rec, authedRequest(http.MethodPost, "/v1/metrics/sync", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp SyncResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Outcome != OutcomeSynced {
		t.Errorf("expected outcome synced, got %q", resp.Outcome)
	}
	if len(resp.Messages) != 1 || !strings.Contains(resp.Messages[0], "sleep") {
		t.Errorf("expected one sleep failure message, got %v", resp.Messages)
	}
	if resp.Snapshot == nil || resp.Snapshot.Steps != 5000 {
		t.Errorf("expected steps despite sleep failure, got %+v", resp.Snapshot)
	}
}

func TestSyncWithoutToken(t *testing.T) {
	service := newTestService(healthyStub(), &stubTokens{tokens: map[string]string{}})
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleSync(rec, authedRequest(http.MethodPost, "/v1/metrics/sync", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without fitness token, got %d", rec.Code)
	}
}

func TestSyncUnauthenticated(t *testing.T) {
	service := newTestService(healthyStub(), newStubTokens("user-1", "fit-token"))
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	req := httptest.NewRequest(http.MethodPost, "/v1/metrics/sync", nil)
	rec := httptest.NewRecorder()
	handlers.HandleSync(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAutoSyncLoop(t *testing.T) {
	service := newTestService(healthyStub(), newStubTokens("user-1", "fit-token"))
	service.interval = 10 * time.Millisecond
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleAutoSync(rec, authedRequest(http.MethodPost, "/v1/metrics/autosync", `{"enabled": true}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("enable autosync: expected 200, got %d", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = httptest.NewRecorder()
		handlers.HandleGetSnapshot(rec, authedRequest(http.MethodGet, "/v1/metrics/snapshot", ""))
		if rec.Code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("autosync did not produce a snapshot in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	handlers.HandleAutoSync(rec, authedRequest(http.MethodPost, "/v1/metrics/autosync", `{"enabled": false}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("disable autosync: expected 200, got %d", rec.Code)
	}
}

func loopRunning(s *Service, userID string) bool {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	_, ok := s.loops[userID]
	return ok
}

func TestAutoSyncTogglePersistsSetting(t *testing.T) {
	cfg := &config.Config{
		SyncIntervalSeconds:    20,
		DefaultStepGoal:        10000,
		DefaultSleepGoalHours:  7.5,
		DefaultHydrationGoalMl: 2000,
	}
	mem := memory.New()
	goals := settings.NewService(mem.GetSettingsStorage(), cfg)
	service := NewService(healthyStub(), newStubTokens("user-1", "fit-token"), &stubHydration{totalMl: 1000}, goals, cfg)
	t.Cleanup(service.Close)
	handlers := NewHandlers(service)

	rec := httptest.NewRecorder()
	handlers.HandleAutoSync(rec, authedRequest(http.MethodPost, "/v1/metrics/autosync", `{"enabled": true}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("enable autosync: expected 200, got %d", rec.Code)
	}

	resp, err := goals.GetOrDefault(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if !resp.Settings.AutoSyncEnabled {
		t.Fatal("expected auto_sync_enabled=true in settings after enabling via endpoint")
	}
	// Остальные настройки не трогаются.
	if resp.Settings.StepGoal != 10000 {
		t.Fatalf("expected untouched step_goal=10000, got %d", resp.Settings.StepGoal)
	}

	rec = httptest.NewRecorder()
	handlers.HandleAutoSync(rec, authedRequest(http.MethodPost, "/v1/metrics/autosync", `{"enabled": false}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("disable autosync: expected 200, got %d", rec.Code)
	}

	resp, err = goals.GetOrDefault(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if resp.Settings.AutoSyncEnabled {
		t.Fatal("expected auto_sync_enabled=false in settings after disabling via endpoint")
	}
}

func TestSettingsUpsertDrivesAutoSyncLoop(t *testing.T) {
	cfg := &config.Config{
		SyncIntervalSeconds:    20,
		DefaultStepGoal:        10000,
		DefaultSleepGoalHours:  7.5,
		DefaultHydrationGoalMl: 2000,
	}
	mem := memory.New()
	goals := settings.NewService(mem.GetSettingsStorage(), cfg)
	service := NewService(healthyStub(), newStubTokens("user-1", "fit-token"), &stubHydration{totalMl: 1000}, goals, cfg)
	service.interval = 10 * time.Millisecond
	t.Cleanup(service.Close)
	goals.SetSyncController(service)
	handlers := NewHandlers(service)

	dto := settings.SettingsDTO{
		StepGoal:        8000,
		SleepGoalHours:  8,
		HydrationGoalMl: 2500,
		AutoSyncEnabled: true,
	}
	if _, err := goals.Upsert(context.Background(), "user-1", dto); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}
	if !loopRunning(service, "user-1") {
		t.Fatal("expected autosync loop to start after saving auto_sync_enabled=true")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		handlers.HandleGetSnapshot(rec, authedRequest(http.MethodGet, "/v1/metrics/snapshot", ""))
		if rec.Code == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("autosync did not produce a snapshot in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	dto.AutoSyncEnabled = false
	if _, err := goals.Upsert(context.Background(), "user-1", dto); err != nil {
		t.Fatalf("upsert settings: %v", err)
	}
	if loopRunning(service, "user-1") {
		t.Fatal("expected autosync loop to stop after saving auto_sync_enabled=false")
	}
}
