// Package client issues completion requests against the Responses endpoint.
// One Send is one HTTP POST; retry and rate limiting are deliberately left
// to callers.
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

	"github.com/dynamaic/assistant-core/pkg/credential"
	"github.com/dynamaic/assistant-core/pkg/wire"
)

const (
	defaultBaseURL = "https://api.openai.com"
	responsesPath  = "/v1/responses"
	defaultTimeout = 120 * time.Second
	defaultService = "openai"
)

// maxErrorBody bounds how much of a failed response is captured into the
// transport error.
const maxErrorBody = 8 * 1024

// Client talks to a Responses-compatible completion endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	service    string
	creds      credential.Source
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithService overrides the credential service name used for bearer lookup.
func WithService(service string) Option {
	return func(c *Client) { c.service = service }
}

// New builds a Client that authenticates through the supplied credential
// source.
func New(creds credential.Source, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errors.New("client: credential source is nil")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		service:    defaultService,
		creds:      creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send posts one request envelope and decodes the response envelope. A
// non-2xx status or network fault yields a *TransportError; a malformed
// envelope yields a *DecodeError.
func (c *Client) Send(ctx context.Context, req wire.Request) (*wire.Response, error) {
	token, err := c.creds.BearerToken(c.service)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, &TransportError{StatusCode: httpResp.StatusCode, Body: string(snippet)}
	}

	var resp wire.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &resp, nil
}

// TransportError reports a network-level fault or non-2xx HTTP status.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error: status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response envelope that could not be parsed,
// indicating a contract break with the endpoint.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response envelope: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
