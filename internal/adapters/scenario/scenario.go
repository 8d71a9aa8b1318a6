// Package scenario loads an optional TOML scenario file and applies it as
// configuration defaults. Environment variables always win, so a scenario
// file is sugar for repeatable runs, never an override channel.
package scenario

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// File is the scenario schema. Pointer fields distinguish "absent" from
// zero values so only the keys the file actually sets become defaults.
type File struct {
	Host *string `toml:"host"`

	Weights *string `toml:"weights"`

	C2AccountsPath *string `toml:"c2_accounts_path"`
	E2AccountsPath *string `toml:"e2_accounts_path"`

	WorkerIndex *int `toml:"worker_index"`
	WorkerCount *int `toml:"worker_count"`

	DefaultCityID     *int `toml:"default_city_id"`
	DefaultIndustryID *int `toml:"default_industry_id"`

	WaitMinSeconds *float64 `toml:"wait_min_seconds"`
	WaitMaxSeconds *float64 `toml:"wait_max_seconds"`

	Seed *int64 `toml:"seed"`

	RetryMax       *int    `toml:"retry_max"`
	RetryBackoffMS *int    `toml:"retry_backoff_ms"`
	RetryStatuses  *string `toml:"retry_statuses"`

	ResumeUploadEnabled *bool `toml:"resume_upload_enabled"`
	ApplyMin            *int  `toml:"apply_min"`
	ApplyMax            *int  `toml:"apply_max"`
	OffersPerJourney    *int  `toml:"offers_per_journey"`
}

// Apply reads path and installs its values as viper defaults under the
// same keys the environment uses. A missing path is not an error when
// optional is true.
func Apply(v *viper.Viper, path string, optional bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read scenario file %s: %w", path, err)
	}

	var file File
	if err := toml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse scenario file %s: %w", path, err)
	}

	setString(v, "LOADGEN_HOST", file.Host)
	setString(v, "PERSONA_WEIGHTS", file.Weights)
	setString(v, "C2_ACCOUNTS_PATH", file.C2AccountsPath)
	setString(v, "E2_ACCOUNTS_PATH", file.E2AccountsPath)
	setInt(v, "LOADTEST_WORKER_INDEX", file.WorkerIndex)
	setInt(v, "LOADTEST_WORKER_COUNT", file.WorkerCount)
	setInt(v, "DEFAULT_CITY_ID", file.DefaultCityID)
	setInt(v, "DEFAULT_INDUSTRY_ID", file.DefaultIndustryID)
	setFloat(v, "WAIT_MIN_SECONDS", file.WaitMinSeconds)
	setFloat(v, "WAIT_MAX_SECONDS", file.WaitMaxSeconds)
	if file.Seed != nil {
		v.SetDefault("LOADTEST_SEED", *file.Seed)
	}
	setInt(v, "HTTP_RETRY_MAX", file.RetryMax)
	setInt(v, "HTTP_RETRY_BACKOFF_MS", file.RetryBackoffMS)
	setString(v, "HTTP_RETRY_STATUSES", file.RetryStatuses)
	if file.ResumeUploadEnabled != nil {
		v.SetDefault("CANDIDATE_RESUME_UPLOAD_ENABLED", *file.ResumeUploadEnabled)
	}
	setInt(v, "CANDIDATE_APPLY_MIN", file.ApplyMin)
	setInt(v, "CANDIDATE_APPLY_MAX", file.ApplyMax)
	setInt(v, "EMPLOYER_OFFERS_PER_JOURNEY", file.OffersPerJourney)
	return nil
}

func setString(v *viper.Viper, key string, value *string) {
	if value != nil {
		v.SetDefault(key, *value)
	}
}

func setInt(v *viper.Viper, key string, value *int) {
	if value != nil {
		v.SetDefault(key, *value)
	}
}

func setFloat(v *viper.Viper, key string, value *float64) {
	if value != nil {
		v.SetDefault(key, *value)
	}
}
