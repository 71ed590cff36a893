package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// Параметры повторов вынесены в переменные, чтобы тесты могли
// подменять длительность ожидания.
var (
	retryCeiling = 3
	backoffUnit  = time.Second
	maxJitter    = time.Second
)

// HTTPError возвращается при любом неуспешном статусе ответа.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http request failed with status %d", e.StatusCode)
}

// IsStatus reports whether err is an *HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == code
}

// Do выполняет запрос с ограниченным числом повторов.
//
// 429 ждёт 2^attempt секунд плюс случайный джиттер до секунды и повторяет.
// Любой другой неуспешный статус возвращает HTTPError без повтора.
// Сетевые ошибки повторяются до потолка, затем отдаются вызывающему.
// Отмена контекста прерывает и ожидание между попытками.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for attempt := 0; attempt < retryCeiling; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptReq, err := cloneRequest(ctx, req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			drainAndClose(resp)
			lastErr = &HTTPError{StatusCode: resp.StatusCode}
			if attempt == retryCeiling-1 {
				break
			}
			if err := waitBackoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			drainAndClose(resp)
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		return resp, nil
	}

	return nil, lastErr
}

func cloneRequest(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	out := req.Clone(ctx)
	if attempt > 0 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	return out, nil
}

func waitBackoff(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt)) * backoffUnit
	if maxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(maxJitter)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
