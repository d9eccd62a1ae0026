package jitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		SlotSize:       128,
		MaxLatency:     512,
		TotalSize:      4096,
		Strategy:       StrategyDefault,
		MonitorLatency: 256,
		Channels:       2,
		BytesPerSample: 2,
	}
}

func TestConfigValidateAccepts(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfigValidateRejectsUndersizedTotal(t *testing.T) {
	cfg := validConfig()
	cfg.TotalSize = cfg.MaxLatency + cfg.SlotSize - 1
	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestConfigValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Strategy = Strategy(99)
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsBadBytesPerSample(t *testing.T) {
	for _, bps := range []int{0, 3, 4} {
		cfg := validConfig()
		cfg.BytesPerSample = bps
		assert.Errorf(t, cfg.Validate(), "bytesPerSample=%d should be rejected", bps)
	}
}

func TestConfigValidateRejectsNonPositiveSlotOrLatency(t *testing.T) {
	cfg := validConfig()
	cfg.SlotSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.MaxLatency = -1
	assert.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsNegativeMonitorLatency(t *testing.T) {
	cfg := validConfig()
	cfg.MonitorLatency = -1
	assert.Error(t, cfg.Validate())
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "default", StrategyDefault.String())
	assert.Equal(t, "fast-overflow", StrategyFastOverflow.String())
	assert.Equal(t, "tight", StrategyTight.String())
	assert.Contains(t, Strategy(42).String(), "42")
}
