//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://localhost:8080"), "/")
	client := &http.Client{Timeout: 20 * time.Second}

	t.Run("state requires session header", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodGet, baseURL+"/api/session/state", "", nil)
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", status, string(body))
		}
	})

	var sessionID string

	t.Run("create session", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/session", "", map[string]any{})
		if status != http.StatusCreated {
			t.Fatalf("create session status=%d body=%s", status, string(body))
		}
		var snap map[string]any
		if err := json.Unmarshal(body, &snap); err != nil {
			t.Fatalf("unmarshal snapshot: %v body=%s", err, string(body))
		}
		sessionID, _ = snap["session_id"].(string)
		if sessionID == "" {
			t.Fatalf("expected session_id in snapshot, got=%v", snap)
		}
		if running, _ := snap["running"].(bool); !running {
			t.Fatalf("expected a running session, got=%v", snap)
		}
	})

	t.Run("work pause resume", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/session/work", sessionID, nil)
		if status != http.StatusOK {
			t.Fatalf("work status=%d body=%s", status, string(body))
		}
		var snap map[string]any
		if err := json.Unmarshal(body, &snap); err != nil {
			t.Fatalf("unmarshal work snapshot: %v body=%s", err, string(body))
		}
		if progress, _ := snap["progress"].(float64); progress <= 0 {
			t.Fatalf("expected progress after a work click, got=%v", snap["progress"])
		}

		status, body = mustJSON(t, client, http.MethodPost, baseURL+"/api/session/pause", sessionID, nil)
		if status != http.StatusOK {
			t.Fatalf("pause status=%d body=%s", status, string(body))
		}
		status, body = mustJSON(t, client, http.MethodPost, baseURL+"/api/session/work", sessionID, nil)
		if status != http.StatusConflict {
			t.Fatalf("expected 409 while paused, got %d body=%s", status, string(body))
		}
		status, body = mustJSON(t, client, http.MethodPost, baseURL+"/api/session/resume", sessionID, nil)
		if status != http.StatusOK {
			t.Fatalf("resume status=%d body=%s", status, string(body))
		}
	})

	t.Run("session log and results", func(t *testing.T) {
		status, logBody := mustJSON(t, client, http.MethodGet, baseURL+"/api/session/log?limit=50", sessionID, nil)
		if status != http.StatusOK {
			t.Fatalf("session log status=%d body=%s", status, string(logBody))
		}

		status, resultsBody := mustJSON(t, client, http.MethodGet, baseURL+"/api/results", "", nil)
		if status != http.StatusOK {
			t.Fatalf("results status=%d body=%s", status, string(resultsBody))
		}
		var results map[string]any
		if err := json.Unmarshal(resultsBody, &results); err != nil {
			t.Fatalf("unmarshal results: %v body=%s", err, string(resultsBody))
		}
		if _, ok := results["results"]; !ok {
			t.Fatalf("expected results key, got=%v", results)
		}
	})

	t.Run("kpi", func(t *testing.T) {
		status, kpiBody := mustJSON(t, client, http.MethodGet, baseURL+"/ops/kpi", "", nil)
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		if err := json.Unmarshal(kpiBody, &kpi); err != nil {
			t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
		}
		if started, _ := kpi["sessions_started"].(float64); started < 1 {
			t.Fatalf("expected at least one started session in kpi, got=%v", kpi)
		}
	})

	t.Run("restart", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/session/restart", sessionID, nil)
		if status != http.StatusOK {
			t.Fatalf("restart status=%d body=%s", status, string(body))
		}
		var snap map[string]any
		if err := json.Unmarshal(body, &snap); err != nil {
			t.Fatalf("unmarshal restart snapshot: %v body=%s", err, string(body))
		}
		if progress, _ := snap["progress"].(float64); progress != 0 {
			t.Fatalf("expected zero progress after restart, got=%v", snap["progress"])
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url, sessionID string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, sessionID, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url, sessionID string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if strings.TrimSpace(sessionID) != "" {
			req.Header.Set("X-Session-ID", sessionID)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		if resp.StatusCode >= 500 {
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
