package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	mu       sync.Mutex
	calls    int
	statuses []int
	body     string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	call := h.calls
	h.calls++
	h.mu.Unlock()

	status := http.StatusOK
	if call < len(h.statuses) {
		status = h.statuses[call]
	}
	w.WriteHeader(status)
	if h.body != "" {
		_, _ = w.Write([]byte(h.body))
	}
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func newExecutor(baseURL string, retryMax int) *Executor {
	return &Executor{
		BaseURL:      baseURL,
		Client:       &http.Client{Timeout: 5 * time.Second},
		RetryMax:     retryMax,
		RetryBackoff: time.Millisecond,
	}
}

func TestDoRetriesTransientStatusThenSucceeds(t *testing.T) {
	t.Parallel()

	handler := &countingHandler{statuses: []int{429}, body: `{"ok": true}`}
	server := httptest.NewServer(handler)
	defer server.Close()

	res, err := newExecutor(server.URL, 2).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs/", Name: "c2: jobs.list"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, 2, handler.count())
}

func TestDoNeverRetriesBusinessFailures(t *testing.T) {
	t.Parallel()

	handler := &countingHandler{statuses: []int{400, 200}}
	server := httptest.NewServer(handler)
	defer server.Close()

	res, err := newExecutor(server.URL, 3).Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/jobs/1/apply/", Name: "c2: jobs.apply"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, 1, handler.count())
}

func TestDoReturnsLastResponseWhenRetriesExhaust(t *testing.T) {
	t.Parallel()

	handler := &countingHandler{statuses: []int{503, 503, 503, 503}}
	server := httptest.NewServer(handler)
	defer server.Close()

	res, err := newExecutor(server.URL, 2).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs/", Name: "c2: jobs.list"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, res.Status)
	assert.Equal(t, 3, handler.count()) // initial attempt + 2 retries
}

func TestDoRetryMaxZeroShortCircuits(t *testing.T) {
	t.Parallel()

	handler := &countingHandler{statuses: []int{500}}
	server := httptest.NewServer(handler)
	defer server.Close()

	res, err := newExecutor(server.URL, 0).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs/", Name: "c2: jobs.list"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, 1, handler.count())
}

func TestDoConnectionFailureIsStatusZero(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listens anymore

	res, _ := newExecutor(server.URL, 1).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/jobs/", Name: "c2: jobs.list"})
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Status)
}

func TestCoerceListShapes(t *testing.T) {
	t.Parallel()

	obj := map[string]any{"id": float64(1)}
	cases := []struct {
		name    string
		payload any
		want    int
	}{
		{"bare array", []any{obj}, 1},
		{"results wrapper", map[string]any{"results": []any{obj}}, 1},
		{"data wrapper", map[string]any{"data": []any{obj}}, 1},
		{"items wrapper", map[string]any{"items": []any{obj}}, 1},
		{"null", nil, 0},
		{"empty object", map[string]any{}, 0},
		{"scalar", "nope", 0},
		{"mixed entries", []any{obj, "junk", float64(2)}, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CoerceList(tc.payload)
			require.NotNil(t, got)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestNormalizePaginatedVsFlat(t *testing.T) {
	t.Parallel()

	paginated := Normalize(map[string]any{
		"results": []any{map[string]any{"id": float64(7)}},
		"next":    "https://api/jobs/?page=2",
	})
	assert.True(t, paginated.Paginated)
	assert.Equal(t, "https://api/jobs/?page=2", paginated.Next)
	require.Len(t, paginated.Items, 1)

	flat := Normalize([]any{map[string]any{"id": float64(7)}})
	assert.False(t, flat.Paginated)
	assert.Empty(t, flat.Next)
	require.Len(t, flat.Items, 1)
}

func TestIDHelpers(t *testing.T) {
	t.Parallel()

	items := []map[string]any{
		{"id": float64(3)},
		{"id": "oops"},
		{"name": "no id"},
		{"id": float64(9)},
	}
	assert.Equal(t, 3, FirstID(items))
	assert.Equal(t, []int{3, 9}, IDs(items))
	assert.Equal(t, 0, FirstID(nil))
}

func TestFormatActionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "c2: jobs.apply", FormatActionName("c2", "jobs.apply"))
}
