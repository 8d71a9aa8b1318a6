package application

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hirewire/loadgen/internal/domain"
)

// writePools materializes the seeded account pools under dir in the
// requested format(s), named so the run command's pool loader picks them
// up directly (C2_ACCOUNTS_PATH / E2_ACCOUNTS_PATH).
func writePools(dir, format string, c2, e2 []domain.Account) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	pools := []struct {
		stem     string
		accounts []domain.Account
	}{
		{"c2_accounts", c2},
		{"e2_accounts", e2},
	}
	for _, pool := range pools {
		if format == "json" || format == "both" {
			if err := writeJSONPool(filepath.Join(dir, pool.stem+".json"), pool.accounts); err != nil {
				return err
			}
		}
		if format == "csv" || format == "both" {
			if err := writeCSVPool(filepath.Join(dir, pool.stem+".csv"), pool.accounts); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSONPool(path string, accounts []domain.Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pool %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write pool %s: %w", path, err)
	}
	return nil
}

func writeCSVPool(path string, accounts []domain.Account) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write pool %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"email", "password"}); err != nil {
		return fmt.Errorf("write pool %s: %w", path, err)
	}
	for _, a := range accounts {
		if err := w.Write([]string{a.Email, a.Password}); err != nil {
			return fmt.Errorf("write pool %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write pool %s: %w", path, err)
	}
	return f.Close()
}
