package jitter

import (
	"math"
	"sync"

	"go.uber.org/zap"
)

// Engine is the jitter-buffer EngineFacade from spec §4.2: a single mutex
// orchestrates Insert, Read, ReadMonitor and ProcessLoss over one shared
// ring, a pair of logical read/write positions, a secondary monitor
// position, and the correction-policy bookkeeping that keeps them in sync
// under clock drift and packet loss.
//
// There is no lock-free fast path and no internal goroutine: the network
// receiver calls Insert/ProcessLoss, the audio callback calls Read and
// optionally ReadMonitor, and the mutex serializes whichever arrives first.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	logger *zap.Logger

	slotSize      int64
	maxLatency    int64
	levelDownRate float64
	tol           tolerances

	ring *ringStore

	writePosition int64
	readPosition  int64

	monitorPosition     int64
	monitorPositionCorr float64

	levelCur float64
	level    int64
	active   bool

	counters counters

	// scratch absorbs a caller-supplied ReadMonitor buffer whose length
	// isn't exactly SlotSize, so the interpolation math in monitor.go can
	// always assume a slotSize-length destination without allocating under
	// the lock.
	scratch []byte
}

// New constructs an Engine. It is the only place this package can fail: once
// constructed, Insert/Read/ReadMonitor/ProcessLoss are total functions on
// their inputs (spec §7).
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	slotSize := int64(cfg.SlotSize)
	maxLatency := int64(cfg.MaxLatency)

	e := &Engine{
		cfg:           cfg,
		logger:        logger,
		slotSize:      slotSize,
		maxLatency:    maxLatency,
		levelDownRate: 0.01 * float64(slotSize),
		tol:           tolerancesFor(cfg.Strategy, slotSize, maxLatency),
		ring:          newRingStore(cfg.TotalSize),
		writePosition: maxLatency,
		levelCur:      float64(maxLatency),
		scratch:       make([]byte, slotSize),
	}

	logger.Info("jitter engine constructed",
		zap.Int("slot_size", cfg.SlotSize),
		zap.Int("max_latency", cfg.MaxLatency),
		zap.Int("total_size", cfg.TotalSize),
		zap.Stringer("strategy", cfg.Strategy),
		zap.Int("monitor_latency", cfg.MonitorLatency),
		zap.Int("channels", cfg.Channels),
		zap.Int("bytes_per_sample", cfg.BytesPerSample),
	)

	return e, nil
}

// Insert writes a newly arrived slot into the buffer. slot[:length] is the
// payload; lostLen is the byte count of audio known missing since the
// previous Insert and is applied via LossHandler before this slot is
// written. See spec §4.2.
func (e *Engine) Insert(slot []byte, length, lostLen int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if length < 0 {
		length = 0
	}
	if length > len(slot) {
		length = len(slot)
	}
	if lostLen < 0 {
		lostLen = 0
	}
	slotLen := int64(length)

	e.active = true

	if grown := slotLen + e.slotSize; grown > e.maxLatency {
		e.maxLatency = grown
		e.tol = tolerancesFor(e.cfg.Strategy, e.slotSize, e.maxLatency)
	}

	if lostLen > 0 {
		e.applyLoss(int64(lostLen))
	}

	e.counters.skewRaw += e.counters.readsNew - slotLen
	e.counters.readsNew = 0
	e.counters.underruns += e.counters.underrunsNew
	e.counters.underrunsNew = 0

	e.level = ceilMultiple(e.levelCur, e.slotSize)

	available := e.writePosition - e.readPosition
	res := decideCorrection(e.tol, e.slotSize, available, slotLen, e.levelCur, float64(e.maxLatency))

	e.readPosition += res.delta
	e.levelCur -= float64(res.delta)
	if e.levelCur > float64(e.maxLatency) {
		e.levelCur = float64(e.maxLatency)
	}

	switch res.kind {
	case correctionReset:
		e.counters.bufIncUnderrun += uint64(-res.delta)
	case correctionOverflow:
		e.counters.overflows += uint64(res.delta)
		e.counters.bufDecOverflow += uint64(res.delta)
	case correctionUnderrunInc:
		e.counters.bufIncUnderrun += uint64(-res.delta)
	case correctionCompensate:
		e.counters.underruns += uint64(-res.delta)
		e.counters.bufIncCompensate += uint64(-res.delta)
	}

	e.ring.writeBytes(e.writePosition, slot[:length])
	e.writePosition += slotLen
}

// Read fills dst with exactly len(dst) bytes (callers pass a SlotSize
// buffer). Missing data is padded with silence and counted as an underrun;
// the consumer's clock is authoritative so readPosition always advances by
// SlotSize regardless of how much real data was available. See spec §4.2.
func (e *Engine) Read(dst []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(dst)
	if !e.active {
		return
	}

	e.counters.readsNew += e.slotSize

	available := e.writePosition - e.readPosition
	if float64(available) < e.levelCur {
		decayed := e.levelCur - e.levelDownRate
		if float64(available) > decayed {
			e.levelCur = float64(available)
		} else {
			e.levelCur = decayed
		}
	} else {
		e.levelCur = float64(available)
	}

	readLen := clampInt64(available, 0, e.slotSize)
	if readLen > 0 {
		copyLen := readLen
		if int64(len(dst)) < copyLen {
			copyLen = int64(len(dst))
		}
		e.ring.readBytes(e.readPosition, dst[:copyLen])
	}
	if readLen < e.slotSize {
		e.counters.underrunsNew += uint64(e.slotSize - readLen)
	}

	e.readPosition += e.slotSize
}

// ReadMonitor fills dst with the secondary, delayed monitor tap. See
// monitor.go for the drift-corrected tap logic (spec §4.6).
func (e *Engine) ReadMonitor(dst []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if int64(len(dst)) == e.slotSize {
		e.readMonitorLocked(dst)
		return
	}
	e.readMonitorLocked(e.scratch)
	clear(dst)
	copy(dst, e.scratch)
}

// ProcessLoss is a stand-alone loss notification, for when the network
// collaborator learns about a gap between packets outside of an Insert
// call. See spec §4.5.
func (e *Engine) ProcessLoss(lostLen int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if lostLen < 0 {
		lostLen = 0
	}
	e.applyLoss(int64(lostLen))
}

// Stats returns a telemetry snapshot. Safe to call from any goroutine.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		Underruns:        e.counters.underruns,
		Overflows:        e.counters.overflows,
		Level:            e.level,
		SkewRaw:          e.counters.skewRaw,
		BufIncUnderrun:   e.counters.bufIncUnderrun,
		BufIncCompensate: e.counters.bufIncCompensate,
		BufDecOverflow:   e.counters.bufDecOverflow,
		BufDecPktLoss:    e.counters.bufDecPktLoss,
		MonitorSkew:      e.counters.monitorSkew,
		MonitorDelta:     e.counters.monitorDelta,
	}
}

// ceilMultiple rounds v up to the smallest multiple of step that is >= v.
func ceilMultiple(v float64, step int64) int64 {
	if step <= 0 {
		return int64(math.Ceil(v))
	}
	n := int64(math.Ceil(v / float64(step)))
	return n * step
}
