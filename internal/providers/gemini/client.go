// Package gemini implements the inference client for Google's
// generateContent endpoint. One image plus one finalized prompt go in; raw
// response text or a single typed terminal error comes out.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bganalyzer/internal/imagemeta"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel          = "gemini-2.5-flash"
	defaultAttemptTimeout = 120 * time.Second
	defaultMaxRetries     = 3
	defaultRetryBackoff   = 5 * time.Second
)

// Options configures the client. APIKey is required; it is resolved once at
// construction and immutable afterwards so tests can substitute fake
// credentials and transports.
type Options struct {
	APIKey         string
	Model          string
	BaseURL        string
	HTTPClient     *http.Client
	AttemptTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         zerolog.Logger
}

type Client struct {
	apiKey         string
	model          string
	baseURL        string
	client         *http.Client
	attemptTimeout time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	logger         zerolog.Logger
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	attemptTimeout := opts.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &Client{
		apiKey:         apiKey,
		model:          model,
		baseURL:        baseURL,
		client:         client,
		attemptTimeout: attemptTimeout,
		maxRetries:     maxRetries,
		retryBackoff:   backoff,
		logger:         opts.Logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Analyze submits the image and prompt, retrying transient failures
// sequentially with exponential backoff. At most maxRetries+1 remote calls
// are made; on failure the caller receives a single InferenceError.
func (c *Client) Analyze(ctx context.Context, asset *imagemeta.Asset, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: asset.Meta.Format.MIMEType(),
					Data:     base64.StdEncoding.EncodeToString(asset.Data),
				}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &InferenceError{Kind: KindUnknown, Attempts: 0, Err: fmt.Errorf("marshal request: %w", err)}
	}

	state := newRetryState(c.maxRetries)
	var lastKind ErrorKind
	var lastErr error
	for state.phase == phaseAttempting {
		if state.attempts > 0 {
			c.logger.Debug().
				Int("attempt", state.attempts+1).
				Str("model", c.model).
				Msg("gemini: retrying after transient failure")
			if err := sleep(ctx, backoffDelay(c.retryBackoff, state.attempts+1)); err != nil {
				return "", &InferenceError{Kind: lastKind, Attempts: state.attempts, Err: lastErr}
			}
		}
		text, kind, err := c.attempt(ctx, body)
		if err == nil {
			return text, nil
		}
		lastKind, lastErr = kind, err
		state = state.next(false, kind)
	}
	return "", &InferenceError{Kind: lastKind, Attempts: state.attempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, body []byte) (string, ErrorKind, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", KindUnknown, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		// Transport failures, including the per-attempt deadline, are
		// transient.
		return "", KindTimeout, fmt.Errorf("invoke gemini: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		kind := classifyStatus(resp.StatusCode)
		return "", kind, fmt.Errorf("gemini status %d: %s", resp.StatusCode, readAPIError(resp.Body))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", KindUnknown, fmt.Errorf("decode gemini response: %w", err)
	}
	text := extractText(out)
	if text == "" {
		return "", KindUnknown, errors.New("gemini returned no text candidates")
	}
	return text, "", nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}

func readAPIError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no error body"
	}
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return strings.TrimSpace(string(data))
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
