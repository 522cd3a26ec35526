package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"notedeck/internal/config"
	"notedeck/internal/logging"
)

const (
	defaultBaseURL = "http://localhost:3000"
	defaultTimeout = 10 * time.Second
	apiPrefix      = "/api"
)

type Client struct {
	baseURL   string
	http      *http.Client
	creds     CredentialPolicy
	logger    logging.Logger
	mutations singleflight.Group
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials string
	Token       string
	Logger      logging.Logger
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	creds, err := NewCredentialPolicy(opts.Credentials, baseURL)
	if err != nil {
		return nil, err
	}
	if token := strings.TrimSpace(opts.Token); token != "" {
		creds.SetToken(token)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		logger:  logger.With(logging.F("component", "api")),
		http: &http.Client{
			Timeout: timeout,
			Jar:     creds.Jar(),
		},
	}, nil
}

// NewFromConfig builds a client using the effective configuration.
func NewFromConfig(cfg config.Config, token string, logger logging.Logger) (*Client, error) {
	return New(Options{
		BaseURL:     cfg.APIBaseURL(),
		Timeout:     cfg.APITimeout(),
		Credentials: cfg.CredentialPolicy(),
		Token:       token,
		Logger:      logger,
	})
}

func NewWithBaseURL(baseURL, token string) *Client {
	c, err := New(Options{BaseURL: baseURL, Token: token, Credentials: config.CredentialsBearer})
	if err != nil {
		// bearer credentials never fail to construct
		panic(err)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the credential currently attached to requests.
func (c *Client) Token() string {
	if c == nil || c.creds == nil {
		return ""
	}
	return c.creds.Token()
}

func (c *Client) SetToken(token string) {
	if c == nil || c.creds == nil {
		return
	}
	c.creds.SetToken(strings.TrimSpace(token))
}

func (c *Client) CredentialPolicy() string {
	if c == nil || c.creds == nil {
		return ""
	}
	return c.creds.Name()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	_, err := c.doJSONWithResponse(ctx, method, path, body, out)
	return err
}

// doJSONWithResponse performs the request and returns the raw body so callers
// can inspect response shapes the typed decode does not cover.
func (c *Client) doJSONWithResponse(ctx context.Context, method, path string, body any, out any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := logging.NewRequestID()
	req.Header.Set("X-Request-ID", requestID)
	c.creds.Attach(req)

	started := time.Now()
	log := c.logger.With(
		logging.F("request_id", requestID),
		logging.F("method", method),
		logging.F("path", apiPrefix+path),
	)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", logging.Err(err), logging.F("duration", time.Since(started)))
		return nil, fmt.Errorf("%s %s: %w", method, apiPrefix+path, err)
	}
	defer resp.Body.Close()
	c.creds.Capture(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("read body failed", logging.Err(err))
		return nil, fmt.Errorf("%s %s: read body: %w", method, apiPrefix+path, err)
	}
	log.Debug("request done", logging.F("status", resp.StatusCode), logging.F("duration", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp.StatusCode, resp.Status, data)
		log.Warn("request rejected", logging.F("status", resp.StatusCode), logging.F("message", apiErr.Message))
		return data, apiErr
	}
	if failure := decodeFailure(resp.StatusCode, data); failure != nil {
		log.Warn("request reported failure", logging.F("message", failure.Message))
		return data, failure
	}
	if out == nil {
		return data, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return data, fmt.Errorf("%w: empty body", ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return data, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return data, nil
}

// collapse runs fn once for all concurrent callers sharing key.
func (c *Client) collapse(key string, fn func() error) error {
	_, err, _ := c.mutations.Do(key, func() (any, error) {
		return nil, fn()
	})
	return err
}

var ErrUnexpectedResponse = errors.New("unexpected response shape")

// APIError is returned for non-2xx responses and for 2xx responses that carry
// {"success": false}. Failure distinguishes the latter.
type APIError struct {
	StatusCode int
	Message    string
	Failure    bool
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Failure {
		return e.Message
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// Message returns the text a view should show for err: the backend message
// when there is one, otherwise fallback.
func Message(err error, fallback string) string {
	if apiErr := AsAPIError(err); apiErr != nil && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

type errorPayload struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeAPIError(status int, statusText string, data []byte) *APIError {
	var payload errorPayload
	_ = json.Unmarshal(data, &payload)
	switch {
	case strings.TrimSpace(payload.Message) != "":
		return &APIError{StatusCode: status, Message: payload.Message}
	case strings.TrimSpace(payload.Error) != "":
		return &APIError{StatusCode: status, Message: payload.Error}
	default:
		return &APIError{StatusCode: status, Message: statusText}
	}
}

func decodeFailure(status int, data []byte) *APIError {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var payload errorPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil
	}
	if payload.Success == nil || *payload.Success {
		return nil
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = "request failed"
	}
	return &APIError{StatusCode: status, Message: message, Failure: true}
}
