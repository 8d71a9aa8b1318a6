// Package config loads and validates the load generator configuration
// from environment variables, with optional scenario-file defaults.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the immutable runtime configuration. Invalid combinations are
// rejected at load time, before any traffic is generated.
type Config struct {
	Host string

	C1Weight int
	C2Weight int
	E1Weight int
	E2Weight int

	C2AccountsPath string
	E2AccountsPath string
	WorkerIndex    int
	WorkerCount    int

	// Zero means "not configured".
	DefaultCityID     int
	DefaultIndustryID int

	WaitMin time.Duration
	WaitMax time.Duration

	Seed int64

	RetryMax      int
	RetryBackoff  time.Duration
	RetryStatuses map[int]struct{}

	ResumeUploadEnabled bool
	ApplyMin            int
	ApplyMax            int
	OffersPerJourney    int
}

func defaults(v *viper.Viper) {
	setDefault(v, "C1_WEIGHT", 10)
	setDefault(v, "C2_WEIGHT", 80)
	setDefault(v, "E1_WEIGHT", 2)
	setDefault(v, "E2_WEIGHT", 8)
	setDefault(v, "LOADTEST_WORKER_INDEX", 0)
	setDefault(v, "LOADTEST_WORKER_COUNT", 1)
	setDefault(v, "WAIT_MIN_SECONDS", 1.0)
	setDefault(v, "WAIT_MAX_SECONDS", 3.0)
	setDefault(v, "HTTP_RETRY_MAX", 1)
	setDefault(v, "HTTP_RETRY_BACKOFF_MS", 250)
	setDefault(v, "HTTP_RETRY_STATUSES", "0,429,500,502,503,504")
	setDefault(v, "CANDIDATE_RESUME_UPLOAD_ENABLED", false)
	setDefault(v, "CANDIDATE_APPLY_MIN", 3)
	setDefault(v, "CANDIDATE_APPLY_MAX", 5)
	setDefault(v, "EMPLOYER_OFFERS_PER_JOURNEY", 1)
}

// setDefault leaves keys alone when something (a scenario file, the
// environment, a test) already provides a value.
func setDefault(v *viper.Viper, key string, value any) {
	if v.Get(key) == nil {
		v.SetDefault(key, value)
	}
}

// Load reads configuration from v. Callers pass a viper instance with
// AutomaticEnv enabled (and optionally scenario-file defaults applied);
// environment variables always win over defaults.
func Load(v *viper.Viper) (Config, error) {
	defaults(v)

	cfg := Config{
		Host:                firstNonEmpty(v.GetString("LOADGEN_HOST"), v.GetString("LOCUST_HOST")),
		C1Weight:            v.GetInt("C1_WEIGHT"),
		C2Weight:            v.GetInt("C2_WEIGHT"),
		E1Weight:            v.GetInt("E1_WEIGHT"),
		E2Weight:            v.GetInt("E2_WEIGHT"),
		C2AccountsPath:      v.GetString("C2_ACCOUNTS_PATH"),
		E2AccountsPath:      v.GetString("E2_ACCOUNTS_PATH"),
		WorkerIndex:         v.GetInt("LOADTEST_WORKER_INDEX"),
		WorkerCount:         v.GetInt("LOADTEST_WORKER_COUNT"),
		DefaultCityID:       v.GetInt("DEFAULT_CITY_ID"),
		DefaultIndustryID:   v.GetInt("DEFAULT_INDUSTRY_ID"),
		WaitMin:             secondsToDuration(v.GetFloat64("WAIT_MIN_SECONDS")),
		WaitMax:             secondsToDuration(v.GetFloat64("WAIT_MAX_SECONDS")),
		Seed:                v.GetInt64("LOADTEST_SEED"),
		RetryMax:            v.GetInt("HTTP_RETRY_MAX"),
		RetryBackoff:        time.Duration(v.GetInt("HTTP_RETRY_BACKOFF_MS")) * time.Millisecond,
		ResumeUploadEnabled: v.GetBool("CANDIDATE_RESUME_UPLOAD_ENABLED"),
		ApplyMin:            v.GetInt("CANDIDATE_APPLY_MIN"),
		ApplyMax:            v.GetInt("CANDIDATE_APPLY_MAX"),
		OffersPerJourney:    v.GetInt("EMPLOYER_OFFERS_PER_JOURNEY"),
	}

	if raw := v.GetString("PERSONA_WEIGHTS"); raw != "" {
		// A single combined spec overrides the individual weight vars.
		w, err := parseWeightsEnv(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.C1Weight, cfg.C2Weight, cfg.E1Weight, cfg.E2Weight = w[0], w[1], w[2], w[3]
	}

	statuses, err := parseRetryStatuses(v.GetString("HTTP_RETRY_STATUSES"))
	if err != nil {
		return Config{}, err
	}
	cfg.RetryStatuses = statuses

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseWeightsEnv parses PERSONA_WEIGHTS in canonical order C2/C1/E2/E1
// and returns [c1, c2, e1, e2].
func parseWeightsEnv(raw string) ([4]int, error) {
	normalized := strings.NewReplacer(",", "/", " ", "/").Replace(strings.TrimSpace(raw))
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(normalized, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 4 {
		return [4]int{}, fmt.Errorf("invalid PERSONA_WEIGHTS %q: expected 4 integers in order c2/c1/e2/e1", raw)
	}
	var c2, c1, e2, e1 int
	for i, dst := range []*int{&c2, &c1, &e2, &e1} {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return [4]int{}, fmt.Errorf("invalid PERSONA_WEIGHTS component %q: %w", parts[i], err)
		}
		*dst = v
	}
	return [4]int{c1, c2, e1, e2}, nil
}

func parseRetryStatuses(raw string) (map[int]struct{}, error) {
	statuses := make(map[int]struct{})
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		code, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_RETRY_STATUSES entry %q: %w", p, err)
		}
		statuses[code] = struct{}{}
	}
	return statuses, nil
}

func (c Config) Validate() error {
	for _, e := range []struct {
		name  string
		value int
	}{
		{"C1_WEIGHT", c.C1Weight},
		{"C2_WEIGHT", c.C2Weight},
		{"E1_WEIGHT", c.E1Weight},
		{"E2_WEIGHT", c.E2Weight},
	} {
		if e.value <= 0 {
			return fmt.Errorf("%s must be a positive integer (got %d)", e.name, e.value)
		}
	}

	if c.WorkerCount < 1 {
		return fmt.Errorf("LOADTEST_WORKER_COUNT must be >= 1 (got %d)", c.WorkerCount)
	}
	if c.WorkerIndex < 0 || c.WorkerIndex >= c.WorkerCount {
		return fmt.Errorf("LOADTEST_WORKER_INDEX must be in range [0, %d) (got %d)", c.WorkerCount, c.WorkerIndex)
	}

	if c.WaitMin < 0 || c.WaitMax < 0 {
		return fmt.Errorf("WAIT_MIN_SECONDS/WAIT_MAX_SECONDS must be >= 0")
	}
	if c.WaitMin > c.WaitMax {
		return fmt.Errorf("WAIT_MIN_SECONDS must be <= WAIT_MAX_SECONDS")
	}

	if c.ApplyMin < 0 || c.ApplyMax < 0 {
		return fmt.Errorf("CANDIDATE_APPLY_MIN/CANDIDATE_APPLY_MAX must be >= 0")
	}
	if c.ApplyMin > c.ApplyMax {
		return fmt.Errorf("CANDIDATE_APPLY_MIN must be <= CANDIDATE_APPLY_MAX")
	}

	if c.OffersPerJourney < 0 {
		return fmt.Errorf("EMPLOYER_OFFERS_PER_JOURNEY must be >= 0")
	}
	return nil
}

func (c Config) Weights() (c1, c2, e1, e2 int) {
	return c.C1Weight, c.C2Weight, c.E1Weight, c.E2Weight
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
