package jitter

import "go.uber.org/zap/zapcore"

// Stats is a read-only telemetry snapshot of an Engine. Underruns,
// Overflows and the BufInc*/BufDec* counters only grow; SkewRaw and
// MonitorSkew are signed running sums that move in both directions; Level
// and MonitorDelta hold the most recently computed values. No overflow
// bounds are assumed beyond 64-bit.
type Stats struct {
	Underruns        uint64
	Overflows        uint64
	Level            int64
	SkewRaw          int64
	BufIncUnderrun   uint64
	BufIncCompensate uint64
	BufDecOverflow   uint64
	BufDecPktLoss    uint64
	MonitorSkew      int64
	MonitorDelta     float64
}

// MarshalLogObject lets callers attach a Stats snapshot to a zap log entry
// with zap.Object("stats", s) without the engine itself logging from a
// locked operation.
func (s Stats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("underruns", s.Underruns)
	enc.AddUint64("overflows", s.Overflows)
	enc.AddInt64("level", s.Level)
	enc.AddInt64("skew_raw", s.SkewRaw)
	enc.AddUint64("buf_inc_underrun", s.BufIncUnderrun)
	enc.AddUint64("buf_inc_compensate", s.BufIncCompensate)
	enc.AddUint64("buf_dec_overflow", s.BufDecOverflow)
	enc.AddUint64("buf_dec_pkt_loss", s.BufDecPktLoss)
	enc.AddInt64("monitor_skew", s.MonitorSkew)
	enc.AddFloat64("monitor_delta", s.MonitorDelta)
	return nil
}

// counters holds the mutable accumulators an Engine updates under its lock.
// underrunsNew and readsNew are flushed into the monotonic counters/skewRaw
// on the next Insert, per spec §4.2.
type counters struct {
	underruns        uint64
	underrunsNew     uint64
	overflows        uint64
	readsNew         int64
	skewRaw          int64
	bufIncUnderrun   uint64
	bufIncCompensate uint64
	bufDecOverflow   uint64
	bufDecPktLoss    uint64
	monitorSkew      int64
	monitorDelta     float64
}
