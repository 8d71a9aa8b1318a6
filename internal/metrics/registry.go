// Package metrics aggregates per-request statistics for a load run.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hirewire/loadgen/internal/domain"
)

type entry struct {
	count    int64
	failures int64
	elapsed  time.Duration
}

// Registry counts requests by metric name. Failures are transport-level
// (status 0) or 5xx; business rejections the journeys tolerate are counted
// separately via MarkTolerated.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]*entry
	tolerated map[string]int64
}

func NewRegistry() *Registry {
	return &Registry{
		entries:   make(map[string]*entry),
		tolerated: make(map[string]int64),
	}
}

// classify maps a raw status onto the transport-level outcome. Business
// rejections the journeys tolerate arrive via MarkTolerated instead.
func classify(status int) domain.Outcome {
	if status == 0 || status >= 500 {
		return domain.Failed(status)
	}
	return domain.Success(status)
}

func (r *Registry) Observe(name string, status int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[name]
	if e == nil {
		e = &entry{}
		r.entries[name] = e
	}
	e.count++
	e.elapsed += elapsed
	if !classify(status).OK() {
		e.failures++
	}
}

func (r *Registry) MarkTolerated(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tolerated[name]++
}

// Summary renders a stable, alphabetically ordered table of all request
// names seen so far.
func (r *Registry) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	var total, failures int64
	for _, name := range names {
		e := r.entries[name]
		total += e.count
		failures += e.failures
		avg := time.Duration(0)
		if e.count > 0 {
			avg = e.elapsed / time.Duration(e.count)
		}
		fmt.Fprintf(&b, "  %-48s count=%-6d failures=%-4d tolerated=%-4d avg=%s\n",
			name, e.count, e.failures, r.tolerated[name], avg.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "  total requests=%d failures=%d", total, failures)
	return b.String()
}

// ReportEvery logs the summary on a fixed interval until stop is closed,
// then logs one final summary.
func (r *Registry) ReportEvery(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			log.Infof("request stats:\n%s", r.Summary())
		case <-stop:
			log.Infof("final request stats:\n%s", r.Summary())
			return
		}
	}
}
