package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel results for calls the client has already dealt with. Callers must
// treat both as "no data, nothing further to surface": ErrNoSession means the
// request was never sent because no token is held, ErrSessionExpired means
// the server answered 401 and the session has been invalidated.
var (
	ErrNoSession      = errors.New("no session token held")
	ErrSessionExpired = errors.New("session expired")
)

// Error is an API-declared failure: a non-2xx response carrying the server's
// {"detail": ...} body. Transport failures are returned as wrapped *url.Error
// values instead, so the two are distinguishable with errors.As.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return e.Detail
}

// Client performs all HTTP traffic against the feedback API. It never owns
// the session: the token is read through TokenSource on every call and the
// session manager is notified of 401s through OnUnauthorized.
type Client struct {
	baseURL string
	http    *http.Client

	// tokenSource returns the current bearer token, or "" when no session
	// exists. Set by the session manager, read on every authenticated call.
	tokenSource func() string

	// onUnauthorized is invoked exactly once per call that receives a 401.
	onUnauthorized func()
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// No client-side timeout: a hung request hangs the calling action.
		http: &http.Client{},
	}
}

func (c *Client) SetTokenSource(fn func() string) {
	c.tokenSource = fn
}

func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// JSON issues an authenticated request and decodes the response body into
// out. A 204 response is success with out left untouched; out may be nil
// when the caller does not need the body.
func (c *Client) JSON(ctx context.Context, method, endpoint string, body, out any) error {
	resp, err := c.do(ctx, method, endpoint, body, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// PublicJSON is the unauthenticated variant of JSON, used for the endpoints
// available before login (team listing, registration).
func (c *Client) PublicJSON(ctx context.Context, method, endpoint string, body, out any) error {
	resp, err := c.do(ctx, method, endpoint, body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// Binary issues an authenticated request and returns the raw payload, for
// responses that are files rather than structured data.
func (c *Client) Binary(ctx context.Context, method, endpoint string) ([]byte, error) {
	resp, err := c.do(ctx, method, endpoint, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, authenticated bool) (*http.Response, error) {
	token := ""
	if authenticated {
		if c.tokenSource != nil {
			token = c.tokenSource()
		}
		if token == "" {
			return nil, ErrNoSession
		}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport-level failure, propagated as-is apart from context.
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && authenticated {
		resp.Body.Close()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		resp.Body.Close()
		return nil, apiErr
	}

	return resp, nil
}

func decodeError(resp *http.Response) *Error {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Detail == "" {
		body.Detail = "an unknown API error occurred"
	}
	return &Error{StatusCode: resp.StatusCode, Detail: body.Detail}
}
