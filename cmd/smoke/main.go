// Smoke-тест против работающего API: go run ./cmd/smoke.
// Требует SMOKE_TOKEN — JWT, выданный сервером после входа через Google
// (или SMOKE_GOOGLE_ACCESS_TOKEN для обмена через /v1/auth/google/token).
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const defaultAPIBase = "http://localhost:8080"

var (
	apiBase      string
	token        string
	client       = &http.Client{Timeout: 30 * time.Second}
	medicationID string
	reportID     string
)

func main() {
	fmt.Println("=== Health Navigator API Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Sign In", testSignIn},
		{"Me", testMe},
		{"Get Settings", testGetSettings},
		{"Add Water", testAddWater},
		{"Water Today", testWaterToday},
		{"Create Medication", testCreateMedication},
		{"List Medications", testListMedications},
		{"Today Schedule", testTodaySchedule},
		{"Sync Metrics", testSyncMetrics},
		{"Snapshot", testSnapshot},
		{"Score", testScore},
		{"Trends", testTrends},
		{"Send Chat Message", testSendChatMessage},
		{"Assessment", testAssessment},
		{"Notifications", testNotifications},
		{"Create Report", testCreateReport},
		{"List Reports", testListReports},
		{"Download Report", testDownloadReport},
		{"Delete Medication", testDeleteMedication},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}
	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := do("GET", "/healthz", nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

// testSignIn обменивает Google access token на JWT сервера,
// если SMOKE_TOKEN не задан напрямую.
func testSignIn() error {
	if token != "" {
		return nil
	}
	googleToken := getEnv("SMOKE_GOOGLE_ACCESS_TOKEN", "")
	if googleToken == "" {
		return fmt.Errorf("set SMOKE_TOKEN or SMOKE_GOOGLE_ACCESS_TOKEN")
	}

	resp, err := do("POST", "/v1/auth/google/token", map[string]any{
		"access_token": googleToken,
	}, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("empty access_token in response")
	}
	token = result.AccessToken
	return nil
}

func testMe() error {
	resp, err := do("GET", "/v1/auth/me", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testGetSettings() error {
	resp, err := do("GET", "/v1/settings", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testAddWater() error {
	resp, err := do("POST", "/v1/intakes/water", map[string]any{"amount_ml": 250}, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusCreated)
}

func testWaterToday() error {
	resp, err := do("GET", "/v1/intakes/water/today", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testCreateMedication() error {
	resp, err := do("POST", "/v1/medications", map[string]any{
		"name":  "Smoke Test Vitamin",
		"dose":  "1 tablet",
		"times": []string{"0900", "2100"},
	}, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.ID == "" {
		return fmt.Errorf("empty medication id in response")
	}
	medicationID = result.ID
	return nil
}

func testListMedications() error {
	resp, err := do("GET", "/v1/medications", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if !strings.Contains(string(body), medicationID) {
		return fmt.Errorf("created medication %s not in list", medicationID)
	}
	return nil
}

func testTodaySchedule() error {
	resp, err := do("GET", "/v1/medications/schedule/today", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testSyncMetrics() error {
	resp, err := do("POST", "/v1/metrics/sync", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testSnapshot() error {
	resp, err := do("GET", "/v1/metrics/snapshot", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testScore() error {
	resp, err := do("GET", "/v1/score", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testTrends() error {
	resp, err := do("GET", "/v1/metrics/trends", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testSendChatMessage() error {
	resp, err := do("POST", "/v1/chat/messages", map[string]any{
		"content": "How much water should I drink per day?",
	}, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testAssessment() error {
	resp, err := do("POST", "/v1/assessment", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testNotifications() error {
	resp, err := do("GET", "/v1/notifications", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusOK)
}

func testCreateReport() error {
	resp, err := do("POST", "/v1/reports", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusCreated); err != nil {
		return err
	}

	var result struct {
		Report struct {
			ID string `json:"id"`
		} `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if result.Report.ID == "" {
		return fmt.Errorf("empty report id in response")
	}
	reportID = result.Report.ID
	return nil
}

func testListReports() error {
	resp, err := do("GET", "/v1/reports", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if !strings.Contains(string(body), reportID) {
		return fmt.Errorf("created report %s not in list", reportID)
	}
	return nil
}

func testDownloadReport() error {
	resp, err := do("GET", "/v1/reports/"+reportID+"/download", nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// В S3-режиме сервер отвечает редиректом на presigned URL,
	// клиент Go следует ему сам; локально приходит PDF напрямую.
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	prefix := make([]byte, 4)
	if _, err := io.ReadFull(resp.Body, prefix); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if string(prefix) != "%PDF" {
		return fmt.Errorf("expected PDF content, got prefix %q", prefix)
	}
	return nil
}

func testDeleteMedication() error {
	resp, err := do("DELETE", "/v1/medications/"+medicationID, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return expectStatus(resp, http.StatusNoContent)
}

func do(method, path string, payload any, authed bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

func expectStatus(resp *http.Response, want int) error {
	if resp.StatusCode == want {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
