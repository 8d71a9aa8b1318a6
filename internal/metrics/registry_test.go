package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveClassifiesFailures(t *testing.T) {
	r := NewRegistry()
	r.Observe("c1: jobs.list", 200, 10*time.Millisecond)
	r.Observe("c1: jobs.list", 500, 10*time.Millisecond)
	r.Observe("c1: jobs.list", 0, 10*time.Millisecond)
	r.Observe("c1: jobs.list", 400, 10*time.Millisecond)

	e := r.entries["c1: jobs.list"]
	assert.EqualValues(t, 4, e.count)
	assert.EqualValues(t, 2, e.failures, "status 0 and 5xx are failures, 4xx is not")
}

func TestSummaryIsSortedAndTotalled(t *testing.T) {
	r := NewRegistry()
	r.Observe("e1: jobs.profile.list", 200, 20*time.Millisecond)
	r.Observe("c1: jobs.apply", 503, 5*time.Millisecond)
	r.MarkTolerated("c1: jobs.apply")

	out := r.Summary()
	assert.Less(t, strings.Index(out, "c1: jobs.apply"), strings.Index(out, "e1: jobs.profile.list"))
	assert.Contains(t, out, "total requests=2 failures=1")
	assert.Contains(t, out, "tolerated=1")
}

func TestObserveIsConcurrencySafe(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Observe("c2: jobs.detail", 200, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3200, r.entries["c2: jobs.detail"].count)
}
