package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"Wellpulse_V0.1/internal/advice"
	"Wellpulse_V0.1/internal/config"
)

// --- Gemini API Configuration ---
const (
	geminiAPIBase      = "https://generativelanguage.googleapis.com/v1beta/models/"
	structuredMimeType = "application/json"
)

// --- Structs for the Gemini API Request/Response ---

type GeminiPayload struct {
	Contents          []GeminiContent   `json:"contents"`
	SystemInstruction *GeminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType"`
	ResponseSchema   *GeminiSchema `json:"response_schema,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client is the time-boxed, bounded-retry Gemini caller. It owns the
// transport policy only; generation retries on schema-invalid payloads are
// the orchestrator's decision.
type Client struct {
	endpoint    string // full URL without the API key, overridable in tests
	apiKey      string
	timeout     time.Duration
	maxRetries  int
	baseBackoff time.Duration
	respOpts    advice.ResponseOptions
	httpClient  *http.Client
}

// NewClient builds the client from configuration. The per-attempt timeout,
// attempt count, and backoff base all come from cfg.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:    geminiAPIBase + cfg.GeminiModel + ":generateContent?key=",
		apiKey:      cfg.GeminiAPIKey,
		timeout:     cfg.GeminiTimeout,
		maxRetries:  cfg.GeminiMaxRetries,
		baseBackoff: cfg.GeminiBackoff,
		respOpts:    advice.ResponseOptions{ForbidEmoji: cfg.ForbidEmoji},
		httpClient:  &http.Client{Timeout: cfg.GeminiTimeout},
	}
}

// GenerateAdvice sends the assembled request to Gemini and returns the
// validated structured response. Transport failures are retried with
// exponential backoff when (and only when) they are transient; a payload
// that decodes but fails the response contract comes back as a
// *advice.SchemaError without further transport retries.
func (c *Client) GenerateAdvice(ctx context.Context, req *advice.AdviceRequest) (*advice.AdviceResponse, error) {
	if c.apiKey == "" {
		return nil, &advice.ProviderError{
			Op:        "generate",
			Retryable: false,
			Err:       errors.New("GEMINI_API_KEY is not configured"),
		}
	}

	payload := GeminiPayload{
		SystemInstruction: &GeminiContent{
			Parts: []GeminiPart{{Text: SystemPrompt}},
		},
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: BuildAdvicePrompt(req)}}},
		},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   AdviceResponseSchema,
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, &advice.ProviderError{Op: "generate", Retryable: false,
			Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr *advice.ProviderError
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return nil, lastErr
			}
		}

		raw, perr := c.post(ctx, payloadBytes)
		if perr != nil {
			log.Warn().Err(perr).Int("attempt", attempt+1).Msg("Gemini call failed")
			if !perr.Retryable {
				return nil, perr
			}
			lastErr = perr
			continue
		}

		return advice.ParseResponse(raw, c.respOpts)
	}

	return nil, &advice.ProviderError{
		Op:        "generate",
		Status:    lastErr.Status,
		Retryable: true,
		Err:       fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr.Err),
	}
}

// post performs one time-boxed call and extracts the raw structured text.
func (c *Client) post(ctx context.Context, payload []byte) ([]byte, *advice.ProviderError) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, &advice.ProviderError{Op: "generate", Retryable: false, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts and transport-level failures are transient.
		return nil, &advice.ProviderError{Op: "generate", Retryable: true,
			Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &advice.ProviderError{
			Op:        "generate",
			Status:    resp.StatusCode,
			Retryable: retryableStatus(resp.StatusCode),
			Err:       fmt.Errorf("API returned %s: %s", resp.Status, string(body)),
		}
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, &advice.ProviderError{Op: "generate", Retryable: true,
			Err: fmt.Errorf("failed to decode response envelope: %w", err)}
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, &advice.ProviderError{Op: "generate", Retryable: true,
			Err: errors.New("no content found in Gemini response")}
	}
	return []byte(geminiResp.Candidates[0].Content.Parts[0].Text), nil
}

// retryableStatus classifies HTTP statuses: request timeout, throttling and
// server-side failures are transient; every other non-200 (bad request,
// auth) is permanent and must not be retried.
func retryableStatus(status int) bool {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// sleepBackoff waits baseBackoff * 2^(attempt-1), bailing out early when the
// caller's context is done.
func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	delay := c.baseBackoff << (attempt - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
