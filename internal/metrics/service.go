package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/googlefit"
	"github.com/fdg312/health-navigator/internal/httpretry"
	"github.com/fdg312/health-navigator/internal/score"
	"github.com/fdg312/health-navigator/internal/settings"
	"github.com/fdg312/health-navigator/internal/userctx"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrReauthRequired = errors.New("fitness reauth required")
	ErrNotSynced      = errors.New("not synced yet")
)

// fitnessAPI покрывает все выборки Google Fit, которые запускает Sync.
// *googlefit.Client реализует его целиком.
type fitnessAPI interface {
	StepsToday(ctx context.Context, token string, now time.Time) (googlefit.StepsResult, error)
	CaloriesToday(ctx context.Context, token string, now time.Time) (googlefit.CaloriesResult, error)
	DistanceToday(ctx context.Context, token string, now time.Time) (googlefit.DistanceResult, error)
	SleepLastNight(ctx context.Context, token string, now time.Time) (googlefit.SleepResult, error)
	HeartRate(ctx context.Context, token string, now time.Time) (googlefit.HeartRateResult, error)
	StepsIntraday(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
	DistanceIntraday(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
	StepsWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
	CaloriesWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
	DistanceWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
	HeartRateWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
	SleepWeekly(ctx context.Context, token string, now time.Time) (googlefit.SeriesResult, error)
}

type tokenSource interface {
	FitnessToken(userID string) (string, bool)
	ClearFitnessToken(userID string)
}

type hydrationSource interface {
	WaterTotalToday(ctx context.Context, userID string) (int, error)
}

type goalsSource interface {
	GetOrDefault(ctx context.Context, userID string) (settings.SettingsResponse, error)
	SetAutoSync(ctx context.Context, userID string, enabled bool) error
}

type userState struct {
	snapshot *SnapshotDTO
	score    *score.HealthScore
	trends   *TrendsResponse
}

// Service агрегирует метрики Google Fit, считает health score
// и управляет фоновой автосинхронизацией.
type Service struct {
	fit       fitnessAPI
	tokens    tokenSource
	hydration hydrationSource
	goals     goalsSource
	interval  time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	state map[string]*userState

	loopMu sync.Mutex
	loops  map[string]context.CancelFunc
}

func NewService(
	fit fitnessAPI,
	tokens tokenSource,
	hydration hydrationSource,
	goals goalsSource,
	cfg *config.Config,
) *Service {
	interval := time.Duration(cfg.SyncIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &Service{
		fit:       fit,
		tokens:    tokens,
		hydration: hydration,
		goals:     goals,
		interval:  interval,
		now:       time.Now,
		state:     make(map[string]*userState),
		loops:     make(map[string]context.CancelFunc),
	}
}

// Close останавливает все циклы автосинхронизации.
func (s *Service) Close() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	for userID, cancel := range s.loops {
		cancel()
		delete(s.loops, userID)
	}
}

func (s *Service) Snapshot(ctx context.Context) (*SnapshotResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.state[userID]
	if !ok || state.snapshot == nil {
		return nil, ErrNotSynced
	}
	return &SnapshotResponse{Snapshot: state.snapshot, Score: state.score}, nil
}

func (s *Service) Score(ctx context.Context) (*ScoreResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.state[userID]
	if !ok || state.score == nil {
		return nil, ErrNotSynced
	}
	return &ScoreResponse{Score: state.score}, nil
}

func (s *Service) Trends(ctx context.Context) (*TrendsResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.state[userID]
	if !ok || state.trends == nil {
		return nil, ErrNotSynced
	}
	return state.trends, nil
}

func (s *Service) Sync(ctx context.Context) (*SyncResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.syncUser(ctx, userID)
}

type fetchResults struct {
	mu sync.Mutex

	steps    googlefit.StepsResult
	calories googlefit.CaloriesResult
	distance googlefit.DistanceResult
	sleep    googlefit.SleepResult
	hr       googlefit.HeartRateResult

	stepsIntraday    googlefit.SeriesResult
	distanceIntraday googlefit.SeriesResult
	stepsWeekly      googlefit.SeriesResult
	caloriesWeekly   googlefit.SeriesResult
	distanceWeekly   googlefit.SeriesResult
	hrWeekly         googlefit.SeriesResult
	sleepWeekly      googlefit.SeriesResult

	failures map[string]error
}

func (r *fetchResults) fail(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = err
}

// syncUser запускает все выборки конкурентно. Ошибка отдельной выборки
// не прерывает остальные: она записывается в messages. Исключение —
// 401: токен сбрасывается и синхронизация завершается целиком.
func (s *Service) syncUser(ctx context.Context, userID string) (*SyncResponse, error) {
	token, ok := s.tokens.FitnessToken(userID)
	if !ok {
		return nil, ErrReauthRequired
	}

	now := s.now()
	results := &fetchResults{failures: make(map[string]error)}

	g, gctx := errgroup.WithContext(ctx)

	run := func(name string, fetch func(context.Context) error) {
		g.Go(func() error {
			if err := fetch(gctx); err != nil {
				results.fail(name, err)
			}
			return nil
		})
	}

	run("steps", func(ctx context.Context) (err error) {
		results.steps, err = s.fit.StepsToday(ctx, token, now)
		return err
	})
	run("calories", func(ctx context.Context) (err error) {
		results.calories, err = s.fit.CaloriesToday(ctx, token, now)
		return err
	})
	run("distance", func(ctx context.Context) (err error) {
		results.distance, err = s.fit.DistanceToday(ctx, token, now)
		return err
	})
	run("sleep", func(ctx context.Context) (err error) {
		results.sleep, err = s.fit.SleepLastNight(ctx, token, now)
		return err
	})
	run("heart_rate", func(ctx context.Context) (err error) {
		results.hr, err = s.fit.HeartRate(ctx, token, now)
		return err
	})
	run("steps_intraday", func(ctx context.Context) (err error) {
		results.stepsIntraday, err = s.fit.StepsIntraday(ctx, token, now)
		return err
	})
	run("distance_intraday", func(ctx context.Context) (err error) {
		results.distanceIntraday, err = s.fit.DistanceIntraday(ctx, token, now)
		return err
	})
	run("steps_weekly", func(ctx context.Context) (err error) {
		results.stepsWeekly, err = s.fit.StepsWeekly(ctx, token, now)
		return err
	})
	run("calories_weekly", func(ctx context.Context) (err error) {
		results.caloriesWeekly, err = s.fit.CaloriesWeekly(ctx, token, now)
		return err
	})
	run("distance_weekly", func(ctx context.Context) (err error) {
		results.distanceWeekly, err = s.fit.DistanceWeekly(ctx, token, now)
		return err
	})
	run("heart_rate_weekly", func(ctx context.Context) (err error) {
		results.hrWeekly, err = s.fit.HeartRateWeekly(ctx, token, now)
		return err
	})
	run("sleep_weekly", func(ctx context.Context) (err error) {
		results.sleepWeekly, err = s.fit.SleepWeekly(ctx, token, now)
		return err
	})

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, err := range results.failures {
		if httpretry.IsStatus(err, http.StatusUnauthorized) {
			s.tokens.ClearFitnessToken(userID)
			return nil, ErrReauthRequired
		}
	}

	messages := make([]string, 0, len(results.failures))
	for name, err := range results.failures {
		messages = append(messages, fmt.Sprintf("%s: %v", name, err))
	}

	if !s.hasAnyData(results) {
		return &SyncResponse{Outcome: OutcomeNoData, Messages: messages}, nil
	}

	snapshot := s.buildSnapshot(results, now)
	healthScore := s.computeScore(ctx, userID, snapshot)
	trends := buildTrends(results)

	s.mu.Lock()
	s.state[userID] = &userState{
		snapshot: snapshot,
		score:    healthScore,
		trends:   trends,
	}
	s.mu.Unlock()

	return &SyncResponse{
		Outcome:  OutcomeSynced,
		Messages: messages,
		Snapshot: snapshot,
		Score:    healthScore,
	}, nil
}

func (s *Service) hasAnyData(r *fetchResults) bool {
	return r.steps.Steps > 0 ||
		r.calories.Calories > 0 ||
		r.distance.Km > 0 ||
		r.sleep.Hours > 0 ||
		r.hr.Current != nil
}

func (s *Service) buildSnapshot(r *fetchResults, now time.Time) *SnapshotDTO {
	return &SnapshotDTO{
		Steps:           r.steps.Steps,
		StepsStatus:     r.steps.Completeness.String(),
		CaloriesKcal:    r.calories.Calories,
		CaloriesStatus:  r.calories.Completeness.String(),
		DistanceKm:      r.distance.Km,
		DistanceStatus:  r.distance.Completeness.String(),
		SleepHours:      r.sleep.Hours,
		SleepMessage:    r.sleep.Message,
		SleepStatus:     r.sleep.Completeness.String(),
		HeartRate:       r.hr.Current,
		HeartRateHourly: r.hr.Hourly,
		HeartRateStatus: r.hr.Completeness.String(),
		SyncedAt:        now.UTC(),
	}
}

func (s *Service) computeScore(ctx context.Context, userID string, snapshot *SnapshotDTO) *score.HealthScore {
	input := score.Input{
		Steps:      snapshot.Steps,
		SleepHours: snapshot.SleepHours,
		Calories:   snapshot.CaloriesKcal,
		DistanceKm: snapshot.DistanceKm,
		HeartRate:  snapshot.HeartRate,
	}

	if s.goals != nil {
		if resp, err := s.goals.GetOrDefault(ctx, userID); err == nil {
			input.StepGoal = resp.Settings.StepGoal
			input.SleepGoalHours = resp.Settings.SleepGoalHours
			input.HydrationGoalMl = resp.Settings.HydrationGoalMl
		}
	}
	if s.hydration != nil {
		if total, err := s.hydration.WaterTotalToday(ctx, userID); err == nil {
			input.HydrationMl = total
		}
	}

	result := score.Calculate(input)
	return &result
}

func buildTrends(r *fetchResults) *TrendsResponse {
	return &TrendsResponse{
		StepsIntraday:    r.stepsIntraday.Points,
		DistanceIntraday: r.distanceIntraday.Points,
		StepsWeekly:      r.stepsWeekly.Points,
		CaloriesWeekly:   r.caloriesWeekly.Points,
		DistanceWeekly:   r.distanceWeekly.Points,
		HeartRateWeekly:  r.hrWeekly.Points,
		SleepWeekly:      r.sleepWeekly.Points,
	}
}

// MARK: - Автосинхронизация

func (s *Service) SetAutoSync(ctx context.Context, enabled bool) (*AutoSyncResponse, error) {
	userID := userIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	s.ApplyAutoSync(userID, enabled)

	// Флаг сохраняется в настройках, чтобы пережить рестарт и идти
	// в ногу с PUT /v1/settings. Цикл уже переключён, поэтому отказ
	// хранилища не откатывает переключатель.
	if err := s.goals.SetAutoSync(ctx, userID, enabled); err != nil {
		log.Printf("WARNING: autosync: failed to persist setting for user %s: %v", userID, err)
	}

	return &AutoSyncResponse{
		Enabled:         enabled,
		IntervalSeconds: int(s.interval / time.Second),
	}, nil
}

// ApplyAutoSync включает или выключает фоновый цикл пользователя.
// Через неё настройки применяют сохранённый auto_sync_enabled.
func (s *Service) ApplyAutoSync(userID string, enabled bool) {
	if enabled {
		s.startAutoSync(userID)
	} else {
		s.stopAutoSync(userID)
	}
}

func (s *Service) startAutoSync(userID string) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if _, running := s.loops[userID]; running {
		return
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.loops[userID] = cancel
	go s.runAutoSync(loopCtx, userID)
	log.Printf("INFO autosync: started for user %s, interval %s", userID, s.interval)
}

func (s *Service) stopAutoSync(userID string) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if cancel, running := s.loops[userID]; running {
		cancel()
		delete(s.loops, userID)
		log.Printf("INFO autosync: stopped for user %s", userID)
	}
}

// runAutoSync — один слот цикла на пользователя: новый тик отменяет
// контекст ещё не завершившегося предыдущего цикла и запускает свой.
func (s *Service) runAutoSync(ctx context.Context, userID string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var cancelCycle context.CancelFunc
	defer func() {
		if cancelCycle != nil {
			cancelCycle()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cancelCycle != nil {
				cancelCycle()
			}
			var cycleCtx context.Context
			cycleCtx, cancelCycle = context.WithCancel(ctx)

			go func(cctx context.Context) {
				if _, err := s.syncUser(cctx, userID); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("WARNING: autosync for user %s failed: %v", userID, err)
					if errors.Is(err, ErrReauthRequired) {
						s.stopAutoSync(userID)
					}
				}
			}(cycleCtx)
		}
	}
}

func userIDFromContext(ctx context.Context) string {
	userID, ok := userctx.GetUserID(ctx)
	if !ok {
		return ""
	}
	return strings.TrimSpace(userID)
}
