package jitter

// applyLoss implements LossHandler / processPacketLoss from spec §4.5. It is
// called both from ProcessLoss directly and from Insert when lostLen > 0,
// against whatever writePosition/readPosition/levelCur the engine currently
// holds. Counters and positions it mutates are documented inline; the
// bookkeeping here is grounded in the original processPacketLoss's two
// branches (its "simple" and "precise" packet-loss handling collapse into
// this one byte-granular algorithm, per spec §4.5, applied regardless of
// strategy).
func (e *Engine) applyLoss(lostLen int64) {
	if lostLen <= 0 {
		return
	}
	e.counters.skewRaw -= lostLen

	available := e.writePosition - e.readPosition
	remaining := lostLen

	if d := available + lostLen - e.maxLatency; d > 0 {
		if d > remaining {
			d = remaining
		}
		remaining -= d
		e.levelCur -= float64(d)
		e.counters.bufDecPktLoss += uint64(d)
	} else if e.levelCur > float64(e.maxLatency)-e.tol.overflowDec {
		d := remaining
		if d > e.slotSize {
			d = e.slotSize
		}
		remaining -= d
		e.levelCur -= float64(d)
		e.counters.bufDecPktLoss += uint64(d)
	}

	if remaining > 0 {
		e.ring.zeroBytes(e.writePosition, remaining)
		e.counters.underruns += uint64(remaining)
		e.writePosition += remaining
	}
}
