// Package jitter implements an adaptive jitter buffer for fixed-size PCM
// audio slots arriving over a lossy, out-of-order datagram transport.
package jitter

import (
	"fmt"

	"go.uber.org/zap"
)

// Strategy selects a preset of correction tolerances. The zero value is the
// conservative default.
type Strategy int

const (
	// StrategyDefault makes up underruns one slot at a time as they occur
	// and drops half of MaxLatency on overflow. Its slow-compensation
	// tolerance is 100 × MaxLatency, so in practice the slow compensation
	// branch never fires under this preset.
	StrategyDefault Strategy = iota
	// StrategyFastOverflow behaves like StrategyDefault but recovers from
	// overflow one slot at a time instead of dropping half the buffer.
	StrategyFastOverflow
	// StrategyTight uses tight tolerances tuned for low, stable latency
	// links where aggressive correction is preferable to a deep buffer.
	StrategyTight
)

func (s Strategy) String() string {
	switch s {
	case StrategyDefault:
		return "default"
	case StrategyFastOverflow:
		return "fast-overflow"
	case StrategyTight:
		return "tight"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Config holds the fixed, construction-time parameters of an Engine. None of
// these may change after New returns; spec Non-goals explicitly exclude
// dynamic reconfiguration of slot size (or, by extension, strategy) once a
// buffer is active.
type Config struct {
	// SlotSize is the byte size of one audio period:
	// channels * bitsPerSample/8 * framesPerPeriod.
	SlotSize int
	// MaxLatency is the maximum occupancy, in bytes, the buffer will hold
	// before the overflow branch fires. It may grow at runtime if a slot
	// larger than expected arrives (see Engine.Insert).
	MaxLatency int
	// TotalSize is the capacity of the underlying ring, in bytes. Must be
	// at least MaxLatency + SlotSize.
	TotalSize int
	// Strategy selects the correction tolerance preset.
	Strategy Strategy
	// MonitorLatency is the byte delay of the secondary monitor tap behind
	// the primary read position.
	MonitorLatency int
	// Channels is the interleaved channel count of each slot.
	Channels int
	// BytesPerSample is 1 (8-bit) or 2 (16-bit little-endian PCM). Only
	// 16-bit slots get fractional-sample resampling in the monitor tap;
	// 8-bit slots use sample-skip correction instead.
	BytesPerSample int
	// Logger receives construction-time diagnostics only. It is never
	// called from Insert, Read, ReadMonitor, or ProcessLoss, which must
	// stay allocation- and I/O-free under the engine's lock. A nil Logger
	// is treated as zap.NewNop().
	Logger *zap.Logger
}

// ConfigError reports an invalid construction parameter. It is the only
// fatal failure kind the engine produces; every steady-state operation is a
// total function on its inputs.
type ConfigError struct {
	err error
}

func (e *ConfigError) Error() string { return e.err.Error() }
func (e *ConfigError) Unwrap() error { return e.err }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{err: fmt.Errorf(format, args...)}
}

// Validate checks the construction invariants from spec §7 and §6.
func (c Config) Validate() error {
	if c.SlotSize <= 0 {
		return configErrorf("jitter: slot size must be positive, got %d", c.SlotSize)
	}
	if c.MaxLatency <= 0 {
		return configErrorf("jitter: max latency must be positive, got %d", c.MaxLatency)
	}
	if c.TotalSize < c.MaxLatency+c.SlotSize {
		return configErrorf("jitter: total size %d must be at least max latency %d + slot size %d",
			c.TotalSize, c.MaxLatency, c.SlotSize)
	}
	switch c.Strategy {
	case StrategyDefault, StrategyFastOverflow, StrategyTight:
	default:
		return configErrorf("jitter: unknown strategy %d", int(c.Strategy))
	}
	if c.BytesPerSample != 1 && c.BytesPerSample != 2 {
		return configErrorf("jitter: bytes per sample must be 1 or 2, got %d", c.BytesPerSample)
	}
	if c.Channels <= 0 {
		return configErrorf("jitter: channels must be positive, got %d", c.Channels)
	}
	if c.MonitorLatency < 0 {
		return configErrorf("jitter: monitor latency must not be negative, got %d", c.MonitorLatency)
	}
	return nil
}
