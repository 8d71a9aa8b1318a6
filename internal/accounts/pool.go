// Package accounts loads pre-seeded credential pools and hands them out
// deterministically to simulated users.
package accounts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hirewire/loadgen/internal/domain"
)

// Cache loads account pool files at most once per path and serves the same
// immutable slice to every caller afterwards. One Cache is shared by all
// virtual users of a process.
type Cache struct {
	mu    sync.Mutex
	pools map[string][]domain.Account
}

func NewCache() *Cache {
	return &Cache{pools: make(map[string][]domain.Account)}
}

// Load returns the pool for path, reading it from disk on first use.
// Supported formats: .json (array of {email,password}) and .csv/.txt
// (header row "email,password"). Rows with a blank email or password are
// skipped.
func (c *Cache) Load(path string) ([]domain.Account, error) {
	if path == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pool, ok := c.pools[path]; ok {
		return pool, nil
	}

	pool, err := readPoolFile(path)
	if err != nil {
		return nil, err
	}
	c.pools[path] = pool
	return pool, nil
}

func readPoolFile(path string) ([]domain.Account, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSONPool(path)
	case ".csv", ".txt":
		return readCSVPool(path)
	default:
		return nil, fmt.Errorf("%w: %s (use .json or .csv)", domain.ErrUnsupportedPoolFormat, path)
	}
}

func readJSONPool(path string) ([]domain.Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read account pool %s: %w", path, err)
	}
	var pool []domain.Account
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, fmt.Errorf("parse account pool %s: %w", path, err)
	}
	return pool, nil
}

func readCSVPool(path string) ([]domain.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read account pool %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse account pool %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	emailCol, passwordCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "email":
			emailCol = i
		case "password":
			passwordCol = i
		}
	}
	if emailCol < 0 || passwordCol < 0 {
		return nil, fmt.Errorf("parse account pool %s: missing email/password header", path)
	}

	pool := make([]domain.Account, 0, len(records)-1)
	for _, row := range records[1:] {
		if emailCol >= len(row) || passwordCol >= len(row) {
			continue
		}
		email := strings.TrimSpace(row[emailCol])
		password := strings.TrimSpace(row[passwordCol])
		if email == "" || password == "" {
			continue
		}
		pool = append(pool, domain.Account{Email: email, Password: password})
	}
	return pool, nil
}
