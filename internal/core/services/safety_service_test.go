package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teenskill-api/internal/config"

	"github.com/stretchr/testify/assert"
)

func safetyConfig(baseURL string, timeout time.Duration) config.SafetyConfig {
	return config.SafetyConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-2.0-flash",
		Timeout: timeout,
	}
}

func geminiStub(t *testing.T, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"` + answer + `"}]}}]}`))
	}))
}

func TestScreenSkipsWithoutAPIKey(t *testing.T) {
	svc := NewSafetyService(config.SafetyConfig{Timeout: time.Second})

	verdict := svc.Screen(context.Background(), "Mow the lawn", "Small garden")
	assert.True(t, verdict.Allowed)
	assert.True(t, verdict.Degraded)
	assert.Equal(t, "AI Check Skipped (No API Key)", verdict.Reason)
}

func TestScreenAllowsSafeTask(t *testing.T) {
	server := geminiStub(t, "SAFE")
	defer server.Close()

	svc := NewSafetyService(safetyConfig(server.URL, time.Second))

	verdict := svc.Screen(context.Background(), "Mow the lawn", "Small garden")
	assert.True(t, verdict.Allowed)
	assert.False(t, verdict.Degraded)
}

func TestScreenRejectsUnsafeTask(t *testing.T) {
	server := geminiStub(t, "UNSAFE")
	defer server.Close()

	svc := NewSafetyService(safetyConfig(server.URL, time.Second))

	verdict := svc.Screen(context.Background(), "Buy cigarettes", "For my uncle")
	assert.False(t, verdict.Allowed)
	assert.False(t, verdict.Degraded)
}

// The classifier is strictly time-bounded; a hanging upstream degrades to
// allowed instead of blocking the posting flow.
func TestScreenFailsOpenOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	svc := NewSafetyService(safetyConfig(server.URL, 50*time.Millisecond))

	start := time.Now()
	verdict := svc.Screen(context.Background(), "Mow the lawn", "Small garden")
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	assert.True(t, verdict.Allowed)
	assert.True(t, verdict.Degraded)
}

func TestScreenFailsOpenOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewSafetyService(safetyConfig(server.URL, time.Second))

	verdict := svc.Screen(context.Background(), "Mow the lawn", "Small garden")
	assert.True(t, verdict.Allowed)
	assert.True(t, verdict.Degraded)
}

func TestScreenFailsOpenOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	svc := NewSafetyService(safetyConfig(server.URL, time.Second))

	verdict := svc.Screen(context.Background(), "Mow the lawn", "Small garden")
	assert.True(t, verdict.Allowed)
	assert.True(t, verdict.Degraded)
}
