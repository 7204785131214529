package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pollen/management/internal/models/dtos"
)

func TestGetResponseTime(t *testing.T) {
	got := GetResponseTime(time.Now())
	if !strings.HasSuffix(got, "ms") {
		t.Errorf("Expected millisecond suffix, got %q", got)
	}
}

func TestRespondSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, time.Now(), "done", map[string]int{"count": 3})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp dtos.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Expected success status, got %s", resp.Status)
	}
	if resp.Message != "done" {
		t.Errorf("Expected message done, got %s", resp.Message)
	}
	if resp.ResponseTime == "" {
		t.Error("Expected response time to be set")
	}
}
