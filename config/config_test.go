package config

import (
	"testing"
	"time"

	"github.com/hirelane/onboarding-engine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EngineDefaults(t *testing.T) {
	t.Setenv("ENGINE_POLL_INTERVAL", "")
	t.Setenv("ENGINE_REAP_INTERVAL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// The pending-approval page refreshes on this interval; it must match
	// the prober's own fallback.
	assert.Equal(t, utils.StatusPollInterval, cfg.Engine.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Engine.ReapInterval)
}

func TestLoadConfig_EngineOverrides(t *testing.T) {
	t.Setenv("ENGINE_POLL_INTERVAL", "45s")
	t.Setenv("ENGINE_REAP_INTERVAL", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Engine.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.Engine.ReapInterval)
}
