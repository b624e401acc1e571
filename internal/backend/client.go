// Package backend holds the HTTP clients for the marketplace backend of
// record. The checkout service owns no storage: products, transactions and
// users live behind these endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// credentialHeader is the header the backend expects the caller's API
// credential in.
const credentialHeader = "apikey"

// Client is the shared HTTP transport for the marketplace backend. The
// caller's credential is passed through per request, never stored.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "backend").Logger(),
	}
}

// do issues a request with the credential attached and returns the response.
// The caller owns the body.
func (c *Client) do(ctx context.Context, method, path, credential string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set(credentialHeader, credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// backendErrors is the error envelope the backend returns on rejections:
// a list of field-independent messages.
type backendErrors struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// errorMessages parses the backend error envelope out of a response body.
// Returns nil when the body does not carry a usable message list.
func errorMessages(body []byte) []string {
	var envelope backendErrors
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	msgs := make([]string, 0, len(envelope.Errors))
	for _, e := range envelope.Errors {
		if e.Msg != "" {
			msgs = append(msgs, e.Msg)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return msgs
}
