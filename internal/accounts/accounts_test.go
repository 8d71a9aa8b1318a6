package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/loadgen/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCacheLoadJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pool.json", `[
		{"email": "a@example.com", "password": "pw-a"},
		{"email": "b@example.com", "password": "pw-b"}
	]`)

	cache := NewCache()
	pool, err := cache.Load(path)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, domain.Account{Email: "a@example.com", Password: "pw-a"}, pool[0])
}

func TestCacheLoadCSVSkipsBlankRows(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pool.csv", "email,password\na@example.com,pw-a\n,\nb@example.com,pw-b\n")

	cache := NewCache()
	pool, err := cache.Load(path)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "b@example.com", pool[1].Email)
}

func TestCacheLoadTxtUsesCSVFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pool.txt", "email,password\na@example.com,pw-a\n")

	pool, err := NewCache().Load(path)
	require.NoError(t, err)
	require.Len(t, pool, 1)
}

func TestCacheLoadReadsDiskOnce(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pool.json", `[{"email": "a@example.com", "password": "pw"}]`)

	cache := NewCache()
	first, err := cache.Load(path)
	require.NoError(t, err)

	// Removing the file proves subsequent loads come from the cache.
	require.NoError(t, os.Remove(path))
	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCacheLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewCache().Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCacheLoadUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "pool.yaml", "email: a@example.com")
	_, err := NewCache().Load(path)
	require.ErrorIs(t, err, domain.ErrUnsupportedPoolFormat)
}

func TestCacheLoadEmptyPathIsNoPool(t *testing.T) {
	t.Parallel()

	pool, err := NewCache().Load("")
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func makePool(n int) []domain.Account {
	pool := make([]domain.Account, n)
	for i := range pool {
		pool[i] = domain.Account{Email: fmt.Sprintf("u%03d@example.com", i), Password: "pw"}
	}
	return pool
}

func TestAllocateDisjointAcrossWorkers(t *testing.T) {
	t.Parallel()

	const workers = 3
	const callsPerWorker = 4
	pool := makePool(workers * callsPerWorker)

	seen := make(map[string]int)
	for worker := 0; worker < workers; worker++ {
		alloc := NewAllocator() // each worker process has its own counter
		for call := 0; call < callsPerWorker; call++ {
			account, err := alloc.Allocate("pool", pool, worker, workers)
			require.NoError(t, err)
			seen[account.Email]++
		}
	}

	assert.Len(t, seen, workers*callsPerWorker)
	for email, count := range seen {
		assert.Equal(t, 1, count, email)
	}
}

func TestAllocateConcurrentCallersNeverCollide(t *testing.T) {
	t.Parallel()

	pool := makePool(64)
	alloc := NewAllocator()

	var mu sync.Mutex
	seen := make(map[string]int)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			account, err := alloc.Allocate("pool", pool, 0, 1)
			if err != nil {
				return
			}
			mu.Lock()
			seen[account.Email]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 64)
	for email, count := range seen {
		assert.Equal(t, 1, count, email)
	}
}

func TestAllocateExhaustionFailsFast(t *testing.T) {
	t.Parallel()

	pool := makePool(2)
	alloc := NewAllocator()

	for i := 0; i < 2; i++ {
		_, err := alloc.Allocate("pool", pool, 0, 1)
		require.NoError(t, err)
	}
	_, err := alloc.Allocate("pool", pool, 0, 1)
	require.ErrorIs(t, err, domain.ErrPoolExhausted)
}

func TestAllocatePreconditions(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()
	pool := makePool(4)

	_, err := alloc.Allocate("pool", pool, 0, 0)
	assert.Error(t, err)
	_, err = alloc.Allocate("pool", pool, 2, 2)
	assert.Error(t, err)
	_, err = alloc.Allocate("pool", pool, -1, 2)
	assert.Error(t, err)
	_, err = alloc.Allocate("pool", nil, 0, 1)
	assert.ErrorIs(t, err, domain.ErrPoolEmpty)
}

func TestAllocateCountersArePerPoolKey(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()
	poolA := makePool(2)
	poolB := makePool(2)

	a, err := alloc.Allocate("a", poolA, 0, 1)
	require.NoError(t, err)
	b, err := alloc.Allocate("b", poolB, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, poolA[0], a)
	assert.Equal(t, poolB[0], b)
}
