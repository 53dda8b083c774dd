// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// maxErrorBody caps how much of an error response is read
const maxErrorBody = 1 << 20

// Client talks to the farm management REST API. It injects the bearer token,
// maps every failure to an *Error and never retries.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewBreaker builds a circuit breaker that opens after `failures` consecutive
// failures and stays open for `openFor`. Client-side rejections (4xx), decode
// errors and the caller's own cancellation never count against it; any other
// error does.
func NewBreaker(name string, failures int, openFor time.Duration) *gobreaker.CircuitBreaker {
	if failures < 1 {
		failures = 1
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// the caller gave up; says nothing about the upstream
			if errors.As(err, new(callerGone)) {
				return true
			}
			apiErr, ok := AsError(err)
			return ok && apiErr.Kind != KindNetwork && apiErr.Kind != KindServer
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// callerGone marks a failure that happened after the caller's context ended
type callerGone struct{ err error }

func (e callerGone) Error() string { return e.err.Error() }
func (e callerGone) Unwrap() error { return e.err }

// Execute runs fn through cb. A failure seen after ctx is done belongs to the
// caller (closed tab, aborted request) and leaves the breaker counts alone.
// http.Client timeouts still count: ctx is live when they fire.
func Execute[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		v, err := fn()
		if err != nil && ctx.Err() != nil {
			return v, callerGone{err: err}
		}
		return v, err
	})
	var gone callerGone
	if errors.As(err, &gone) {
		err = gone.err
	}
	v, _ := res.(T)
	return v, err
}

// New builds a Client for the API rooted at base (e.g. http://localhost:8000/api)
func New(base string, timeout time.Duration, failures int, openFor time.Duration) *Client {
	return &Client{
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: NewBreaker("farm-api", failures, openFor),
	}
}

// Do performs one JSON request. token may be empty; body and out may be nil.
func (c *Client) Do(ctx context.Context, op, method, path, token string, body, out any) error {
	_, err := Execute(ctx, c.breaker, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, op, method, path, token, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Kind: KindNetwork, Op: op, Detail: "service temporarily unavailable", Err: err}
	}
	return err
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("api request failed", "op", op, "method", method, "path", path, "error", err)
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("api request completed",
		"op", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := responseError(op, resp.StatusCode, data)
		slog.Warn("api request rejected", "op", op, "status", resp.StatusCode, "kind", apiErr.Kind.String())
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
