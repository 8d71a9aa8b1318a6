// Package httpx wraps every HTTP call the load generator makes with a
// bounded retry-on-transient-failure policy and consistent request naming.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

// DefaultRetryStatuses are the transport-level statuses worth retrying.
// Status 0 denotes a connection-level failure before any response arrived.
var DefaultRetryStatuses = map[int]struct{}{
	0:   {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// Observer receives one notification per logical request (after retries).
type Observer interface {
	Observe(name string, status int, elapsed time.Duration)
}

type Executor struct {
	BaseURL       string
	Client        *http.Client
	RetryMax      int
	RetryBackoff  time.Duration
	RetryStatuses map[int]struct{}
	Observer      Observer
}

// Request describes one API call. Name follows the "persona: action"
// convention so metrics aggregate across users of the same persona.
type Request struct {
	Method      string
	Path        string
	Name        string
	Query       url.Values
	Header      http.Header
	JSON        any
	Body        []byte
	ContentType string
}

// Result is the terminal response of one logical request. Status 0 means
// the connection itself failed on every attempt.
type Result struct {
	Status int
	Body   []byte
	Name   string
}

func (r *Result) JSON() any {
	if r == nil || len(r.Body) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(r.Body, &payload); err != nil {
		return nil
	}
	return payload
}

func (r *Result) JSONMap() map[string]any {
	m, _ := r.JSON().(map[string]any)
	return m
}

func (r *Result) BodyString() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

func (e *Executor) retryable(status int) bool {
	statuses := e.RetryStatuses
	if statuses == nil {
		statuses = DefaultRetryStatuses
	}
	_, ok := statuses[status]
	return ok
}

// Do executes the request, retrying up to RetryMax additional times with a
// fixed backoff while the status stays in the retryable set. The last
// result is returned once attempts are exhausted; callers still check the
// status. Business failures (400/403/404) are never retried here.
func (e *Executor) Do(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	res, err := e.doWithRetry(ctx, req)
	if e.Observer != nil {
		status := 0
		if res != nil {
			status = res.Status
		}
		e.Observer.Observe(req.Name, status, time.Since(started))
	}
	return res, err
}

func (e *Executor) doWithRetry(ctx context.Context, req Request) (*Result, error) {
	if e.RetryMax <= 0 {
		return e.doOnce(ctx, req)
	}

	var last *Result
	var lastErr error
	retryErr := retry.Do(
		func() error {
			res, err := e.doOnce(ctx, req)
			last, lastErr = res, err
			if err != nil {
				return err
			}
			if e.retryable(res.Status) {
				return fmt.Errorf("retryable status %d for %s", res.Status, req.Name)
			}
			return nil
		},
		retry.Attempts(uint(e.RetryMax)+1),
		retry.Delay(e.RetryBackoff),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)

	if last != nil {
		// Exhausted retries still surface the final response so the caller
		// can apply business-level handling.
		return last, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, retryErr
}

func (e *Executor) doOnce(ctx context.Context, req Request) (*Result, error) {
	httpReq, err := e.build(ctx, req)
	if err != nil {
		return nil, err
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		// Connection-level failure: modelled as status 0 so the retry set
		// can include it alongside HTTP statuses.
		return &Result{Status: 0, Name: req.Name}, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp)
	if err != nil {
		return &Result{Status: resp.StatusCode, Name: req.Name}, err
	}
	return &Result{Status: resp.StatusCode, Body: body, Name: req.Name}, nil
}

func (e *Executor) build(ctx context.Context, req Request) (*http.Request, error) {
	endpoint, err := joinURL(e.BaseURL, req.Path)
	if err != nil {
		return nil, err
	}
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + req.Query.Encode()
	}

	var body *bytes.Reader
	contentType := req.ContentType
	switch {
	case req.JSON != nil:
		raw, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.Name, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	case req.Body != nil:
		body = bytes.NewReader(req.Body)
	default:
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.Name, err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func joinURL(base, path string) (string, error) {
	if base == "" {
		return path, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	return strings.TrimRight(u.String(), "/") + path, nil
}

// FormatActionName builds the "persona: action" metric name used across
// the suite.
func FormatActionName(personaKey, action string) string {
	return personaKey + ": " + action
}
