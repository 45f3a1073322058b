// Package api is the HTTP client for the assessment backend. The backend
// is the authoritative oracle for reachability and maturity scoring; this
// client only moves payloads and classifies failures per the error
// taxonomy (not-found, validation, transient).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gapscan/gapscan/internal/catalog"
	"github.com/gapscan/gapscan/internal/evidence"
	"github.com/gapscan/gapscan/internal/flow"
)

// Origin values distinguish adaptively-reached answers from user-expanded
// ones so the backend can score them apart.
const (
	OriginAdaptive = "adaptive"
	OriginOverride = "override"
)

// CatalogPayload is the questions endpoint response.
type CatalogPayload struct {
	Questions        []catalog.Question       `json:"questions"`
	EvidencePolicies []catalog.EvidencePolicy `json:"evidence_policies,omitempty"`
}

// IntakeResponse is one answered intake question.
type IntakeResponse struct {
	IntakeQID string `json:"intake_q_id"`
	Value     string `json:"value"`
}

// IntakeComplete reports whether the intake gate passes: at least one
// intake response with a non-zero value. An empty result blocks entry to
// the assessment flow.
func IntakeComplete(responses []IntakeResponse) bool {
	for _, r := range responses {
		v := strings.TrimSpace(r.Value)
		if v != "" && v != "0" {
			return true
		}
	}
	return false
}

// SubmitRequest is the answer-submission payload.
type SubmitRequest struct {
	AssessmentID string                `json:"assessment_id"`
	QID          string                `json:"q_id"`
	AID          string                `json:"a_id"`
	Score        int                   `json:"score"`
	PackID       string                `json:"pack_id,omitempty"`
	IsDeferred   bool                  `json:"is_deferred"`
	IsFlagged    bool                  `json:"is_flagged"`
	Evidence     *evidence.Attestation `json:"evidence"`
	Origin       string                `json:"origin"`
	SessionID    string                `json:"session_id,omitempty"`
}

// SubmitReply is the fresh resumption state plus an optional advisory
// message explaining a branching decision.
type SubmitReply struct {
	flow.ResumptionState
	LogicReason string `json:"logic_reason,omitempty"`
}

// RetryConfig tunes the GET retry loop. Submissions are never retried
// automatically; a failed submission leaves prior state untouched and the
// user free to repeat the action.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig is tuned for interactive use: fail fast enough that
// the status banner appears promptly.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 300 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

// Client talks to the assessment backend. Tenant and user headers are
// injected on every request.
type Client struct {
	baseURL  string
	tenantID string
	userID   string
	http     *http.Client
	retry    RetryConfig
}

// New creates a Client for the given backend.
func New(baseURL, tenantID, userID string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tenantID: tenantID,
		userID:   userID,
		http:     &http.Client{Timeout: 15 * time.Second},
		retry:    DefaultRetryConfig(),
	}
}

// WithHTTPClient replaces the underlying http.Client (tests, custom TLS).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(rc RetryConfig) *Client {
	c.retry = rc
	return c
}

// Questions fetches the full question catalog for an assessment.
func (c *Client) Questions(ctx context.Context, assessmentID string) (*CatalogPayload, error) {
	raw, err := c.getWithRetry(ctx, fmt.Sprintf("/assessments/%s/questions", assessmentID), "assessment", assessmentID)
	if err != nil {
		return nil, err
	}
	if err := validatePayload("catalog", catalogSchema, raw); err != nil {
		return nil, &ErrBadPayload{Endpoint: "questions", Err: err}
	}
	var payload CatalogPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &ErrBadPayload{Endpoint: "questions", Err: err}
	}
	return &payload, nil
}

// Resume fetches the server's resumption state. A 404 means the
// assessment no longer exists and surfaces as *ErrNotFound.
func (c *Client) Resume(ctx context.Context, assessmentID string) (*flow.ResumptionState, error) {
	raw, err := c.getWithRetry(ctx, fmt.Sprintf("/assessments/%s/resume", assessmentID), "assessment", assessmentID)
	if err != nil {
		return nil, err
	}
	if err := validatePayload("resumption", resumptionSchema, raw); err != nil {
		return nil, &ErrBadPayload{Endpoint: "resume", Err: err}
	}
	var state flow.ResumptionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, &ErrBadPayload{Endpoint: "resume", Err: err}
	}
	return &state, nil
}

// Intake fetches the intake responses gating entry into the flow.
func (c *Client) Intake(ctx context.Context, assessmentID string) ([]IntakeResponse, error) {
	raw, err := c.getWithRetry(ctx, fmt.Sprintf("/assessments/%s/intake", assessmentID), "assessment", assessmentID)
	if err != nil {
		return nil, err
	}
	var responses []IntakeResponse
	if err := json.Unmarshal(raw, &responses); err != nil {
		return nil, &ErrBadPayload{Endpoint: "intake", Err: err}
	}
	return responses, nil
}

// Submit posts one answer submission and returns the authoritative fresh
// state. No retry: re-submitting is an explicit user action.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*SubmitReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submissions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ErrUnavailable{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ErrUnavailable{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &ErrNotFound{Resource: "assessment", ID: req.AssessmentID}
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return nil, &ErrValidation{Message: errorMessage(raw)}
	case resp.StatusCode != http.StatusOK:
		return nil, &ErrUnavailable{Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	if err := validatePayload("resumption", resumptionSchema, raw); err != nil {
		return nil, &ErrBadPayload{Endpoint: "submit", Err: err}
	}
	var reply SubmitReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, &ErrBadPayload{Endpoint: "submit", Err: err}
	}
	return &reply, nil
}

// getWithRetry performs a GET with backoff on transient failures.
// Context cancellation aborts immediately; a 404 is never retried.
func (c *Client) getWithRetry(ctx context.Context, path, resource, id string) ([]byte, error) {
	var lastErr error
	for attempt := range c.retry.MaxAttempts {
		raw, err := c.get(ctx, path, resource, id)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var nf *ErrNotFound
		if errors.As(err, &nf) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == c.retry.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, path, resource, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ErrUnavailable{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ErrNotFound{Resource: resource, ID: id}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ErrUnavailable{Err: fmt.Errorf("HTTP %d for %s", resp.StatusCode, path)}
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.tenantID != "" {
		req.Header.Set("X-Tenant-ID", c.tenantID)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
}

// backoff computes the wait for the given attempt with ±20% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	wait := float64(c.retry.InitialWait) * math.Pow(c.retry.Multiplier, float64(attempt))
	if wait > float64(c.retry.MaxWait) {
		wait = float64(c.retry.MaxWait)
	}
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
