package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"teenskill-api/internal/config"
)

// SafetyVerdict is the outcome of screening a task posting. The check is
// advisory: when the classifier is unreachable or unconfigured the verdict
// is allowed with Degraded set, never a rejection.
type SafetyVerdict struct {
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason"`
	Degraded bool   `json:"degraded"`
}

const (
	safetySkippedReason  = "AI Check Skipped (No API Key)"
	safetyDegradedReason = "AI Check Unavailable"
)

// safetyPrompt instructs the model to answer with a single token. Anything
// other than an explicit UNSAFE counts as safe.
const safetyPrompt = `You are a content moderator for a micro-task platform used by teenagers (13-17).
Review the task posting below. Reply with exactly one word: SAFE if the task is appropriate
for a teenager to perform, or UNSAFE if it involves anything dangerous, illegal, adult,
exploitative, or otherwise inappropriate for minors.

Title: %s
Description: %s`

// SafetyService screens task postings through the Gemini API before they
// reach the marketplace.
type SafetyService struct {
	cfg    config.SafetyConfig
	client *http.Client
}

// NewSafetyService creates a new safety service
func NewSafetyService(cfg config.SafetyConfig) *SafetyService {
	return &SafetyService{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Gemini generateContent request/response shapes, reduced to the fields we
// use.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Screen classifies a task posting. Fail-open: no API key means skipped,
// and any upstream failure (timeout, non-200, unparseable body) degrades
// to allowed so the marketplace never stalls on the classifier.
func (s *SafetyService) Screen(ctx context.Context, title, description string) *SafetyVerdict {
	if !s.cfg.Enabled() {
		return &SafetyVerdict{Allowed: true, Reason: safetySkippedReason, Degraded: true}
	}

	verdict, err := s.classify(ctx, title, description)
	if err != nil {
		log.Printf("⚠️ Safety check degraded for %q: %v", title, err)
		return &SafetyVerdict{Allowed: true, Reason: safetyDegradedReason, Degraded: true}
	}

	return verdict
}

func (s *SafetyService) classify(ctx context.Context, title, description string) (*SafetyVerdict, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.Model, s.cfg.APIKey)

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{
				Text: fmt.Sprintf(safetyPrompt, title, description),
			}},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("safety api returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("safety api returned no candidates")
	}

	answer := strings.ToUpper(strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text))
	if strings.Contains(answer, "UNSAFE") {
		return &SafetyVerdict{Allowed: false, Reason: "Task flagged as inappropriate for teen freelancers"}, nil
	}

	return &SafetyVerdict{Allowed: true, Reason: "AI Check Passed"}, nil
}
