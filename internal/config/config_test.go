package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.C1Weight)
	assert.Equal(t, 80, cfg.C2Weight)
	assert.Equal(t, 2, cfg.E1Weight)
	assert.Equal(t, 8, cfg.E2Weight)
	assert.Equal(t, 0, cfg.WorkerIndex)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, time.Second, cfg.WaitMin)
	assert.Equal(t, 3*time.Second, cfg.WaitMax)
	assert.Equal(t, 1, cfg.RetryMax)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBackoff)
	assert.Contains(t, cfg.RetryStatuses, 0)
	assert.Contains(t, cfg.RetryStatuses, 503)
	assert.Equal(t, 3, cfg.ApplyMin)
	assert.Equal(t, 5, cfg.ApplyMax)
	assert.Equal(t, 1, cfg.OffersPerJourney)
	assert.False(t, cfg.ResumeUploadEnabled)
}

func TestLoadPersonaWeightsOverridesIndividuals(t *testing.T) {
	t.Parallel()

	cfg, err := Load(newViper(map[string]any{
		"PERSONA_WEIGHTS": "60/20/15/5",
		"C1_WEIGHT":       99,
	}))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.C1Weight)
	assert.Equal(t, 60, cfg.C2Weight)
	assert.Equal(t, 5, cfg.E1Weight)
	assert.Equal(t, 15, cfg.E2Weight)
}

func TestLoadHostPrecedence(t *testing.T) {
	t.Parallel()

	cfg, err := Load(newViper(map[string]any{"LOCUST_HOST": "http://a"}))
	require.NoError(t, err)
	assert.Equal(t, "http://a", cfg.Host)

	cfg, err = Load(newViper(map[string]any{"LOCUST_HOST": "http://a", "LOADGEN_HOST": "http://b"}))
	require.NoError(t, err)
	assert.Equal(t, "http://b", cfg.Host)
}

func TestLoadFailsFastOnInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []map[string]any{
		{"C2_WEIGHT": 0},
		{"C1_WEIGHT": -3},
		{"PERSONA_WEIGHTS": "80/10/8"},
		{"PERSONA_WEIGHTS": "80/10/8/0"},
		{"LOADTEST_WORKER_COUNT": 0},
		{"LOADTEST_WORKER_INDEX": 4, "LOADTEST_WORKER_COUNT": 4},
		{"LOADTEST_WORKER_INDEX": -1},
		{"WAIT_MIN_SECONDS": 5.0, "WAIT_MAX_SECONDS": 2.0},
		{"WAIT_MIN_SECONDS": -1.0},
		{"CANDIDATE_APPLY_MIN": 6, "CANDIDATE_APPLY_MAX": 2},
		{"EMPLOYER_OFFERS_PER_JOURNEY": -1},
		{"HTTP_RETRY_STATUSES": "500,abc"},
	}
	for _, values := range cases {
		_, err := Load(newViper(values))
		assert.Error(t, err, "%v", values)
	}
}

func TestLoadRetryStatusesCSV(t *testing.T) {
	t.Parallel()

	cfg, err := Load(newViper(map[string]any{"HTTP_RETRY_STATUSES": "0, 502 ,504"}))
	require.NoError(t, err)
	assert.Len(t, cfg.RetryStatuses, 3)
	assert.Contains(t, cfg.RetryStatuses, 502)
	assert.NotContains(t, cfg.RetryStatuses, 429)
}
