package accounts

import (
	"fmt"
	"sync"

	"github.com/hirewire/loadgen/internal/domain"
)

// Allocator hands out pool entries so that no two callers ever receive the
// same account, within this process and across distributed workers.
//
// Allocation is deterministic rather than random so runs are repeatable:
// each call takes the next local index, and the pool index is
// localIndex*workerCount+workerIndex. Workers configured with distinct
// worker indices therefore claim disjoint, interleaved slices of the pool
// with no coordination beyond static configuration.
type Allocator struct {
	mu       sync.Mutex
	counters map[string]int
}

func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[string]int)}
}

// Allocate returns the next unclaimed account of the pool identified by
// key. It fails fast with ErrPoolExhausted instead of wrapping around, so
// operators grow the seeded pool rather than unknowingly reuse credentials
// across simulated users.
func (a *Allocator) Allocate(key string, pool []domain.Account, workerIndex, workerCount int) (domain.Account, error) {
	if workerCount < 1 {
		return domain.Account{}, fmt.Errorf("worker count must be >= 1 (got %d)", workerCount)
	}
	if workerIndex < 0 || workerIndex >= workerCount {
		return domain.Account{}, fmt.Errorf("worker index must be in range [0, %d) (got %d)", workerCount, workerIndex)
	}
	if len(pool) == 0 {
		return domain.Account{}, domain.ErrPoolEmpty
	}

	a.mu.Lock()
	localIndex := a.counters[key]
	a.counters[key] = localIndex + 1
	a.mu.Unlock()

	poolIndex := localIndex*workerCount + workerIndex
	if poolIndex >= len(pool) {
		return domain.Account{}, fmt.Errorf(
			"%w: need index %d, pool size %d; seed more accounts or reduce users/weights",
			domain.ErrPoolExhausted, poolIndex, len(pool),
		)
	}
	return pool[poolIndex], nil
}
