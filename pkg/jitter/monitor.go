package jitter

import "math"

// monitorSnapThreshold is the |d| multiple of slotSize past which readMonitor
// gives up on the slow PI corrector and snaps straight to the target
// position (spec §4.6).
const monitorSnapThreshold = 2

// monitorGain is the integral gain applied to the tracking error each call.
// Small enough that a full slot of correction takes at least about 1,700
// calls (at the largest error short of a snap, 2*slotSize), which is what
// keeps the drift compensation inaudible.
const monitorGain = 0.0003

// readMonitorLocked implements MonitorTap / readMonitor from spec §4.6.
// Caller holds the engine lock.
func (e *Engine) readMonitorLocked(dst []byte) {
	if e.readPosition == 0 {
		clear(dst)
		return
	}

	minStep := int64(e.cfg.Channels * e.cfg.BytesPerSample)
	slotSize := e.slotSize

	d := float64(e.readPosition - int64(e.cfg.MonitorLatency) - e.monitorPosition - slotSize)

	outLen := slotSize
	skip := int64(0)

	if math.Abs(d) > float64(monitorSnapThreshold)*float64(slotSize) {
		e.monitorPosition = e.readPosition - int64(e.cfg.MonitorLatency) - slotSize
		e.monitorPositionCorr = 0
	} else {
		e.monitorPositionCorr += monitorGain * d
		if math.Abs(e.monitorPositionCorr) >= float64(minStep) {
			delta := int64(math.Floor(e.monitorPositionCorr / float64(minStep)))
			e.monitorPositionCorr -= float64(delta) * float64(minStep)
			e.counters.monitorSkew += delta

			if e.cfg.BytesPerSample == 2 {
				outLen = slotSize + delta*minStep
			} else {
				skip = delta * minStep
			}
		}
	}
	e.counters.monitorDelta = d / float64(minStep)

	if skip != 0 {
		e.monitorPosition += skip
	}

	if outLen == slotSize {
		available := e.writePosition - e.monitorPosition
		readLen := clampInt64(available, 0, slotSize)
		e.ring.readBytes(e.monitorPosition, dst[:readLen])
		clear(dst[readLen:])
		e.monitorPosition += slotSize
		return
	}

	e.resampleMonitor(dst, outLen, minStep)
	e.monitorPosition += outLen
}

// resampleMonitor implements the 16-bit interpolation path of readMonitor:
// outLen input bytes are mapped onto slotSize output bytes via linear
// interpolation between adjacent samples, per channel.
func (e *Engine) resampleMonitor(dst []byte, outLen, minStep int64) {
	slotSize := e.slotSize
	framesOut := slotSize / minStep
	channels := int64(e.cfg.Channels)
	k := float64(outLen) / float64(slotSize)

	for j := int64(0); j < framesOut; j++ {
		pos := float64(j) * k
		j1 := int64(math.Floor(pos))
		a := pos - float64(j1)

		for ch := int64(0); ch < channels; ch++ {
			base := e.monitorPosition + j1*minStep + ch*2
			v1 := float64(e.sampleAt(base))
			v2 := float64(e.sampleAt(base + minStep))
			out := int16(math.Round((1-a)*v1 + a*v2))

			off := j*minStep + ch*2
			dst[off] = byte(uint16(out))
			dst[off+1] = byte(uint16(out) >> 8)
		}
	}
}

// sampleAt returns the 16-bit sample at a ring position, reading silence for
// any position at or beyond what the producer has written so interpolation
// near the write edge never pulls in stale ring contents.
func (e *Engine) sampleAt(pos int64) int16 {
	if pos >= e.writePosition {
		return 0
	}
	return e.ring.readInt16(pos)
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
