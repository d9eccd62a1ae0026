package jitter

// tolerances holds the strategy-selected thresholds CorrectionPolicy uses to
// decide whether, and how far, to nudge readPosition on each insert. See
// spec §4.4; the three presets below are StrategyDefault, StrategyFastOverflow
// and StrategyTight.
type tolerances struct {
	underrunInc      float64
	corrInc          float64
	overflowDec      float64
	overflowDropStep int64
}

// tolerancesFor resolves a strategy into concrete byte-scale thresholds
// given the engine's slot size and (possibly already grown) max latency.
func tolerancesFor(s Strategy, slotSize, maxLatency int64) tolerances {
	switch s {
	case StrategyFastOverflow:
		return tolerances{
			underrunInc:      -10 * float64(slotSize),
			corrInc:          100 * float64(maxLatency),
			overflowDec:      100 * float64(maxLatency),
			overflowDropStep: slotSize,
		}
	case StrategyTight:
		return tolerances{
			underrunInc:      1.1 * float64(slotSize),
			corrInc:          1.2 * float64(slotSize),
			overflowDec:      0.02 * float64(slotSize),
			overflowDropStep: slotSize,
		}
	default: // StrategyDefault
		return tolerances{
			underrunInc:      -10 * float64(slotSize),
			corrInc:          100 * float64(maxLatency),
			overflowDec:      100 * float64(maxLatency),
			overflowDropStep: maxLatency / 2,
		}
	}
}

// correctionKind labels which branch of the policy fired, so the caller
// knows which counters to move (spec §4.4 branches 1-5, see Engine.Insert).
type correctionKind int

const (
	correctionNone correctionKind = iota
	correctionReset
	correctionOverflow
	correctionUnderrunInc
	correctionCompensate
)

// correctionResult is the outcome of one decideCorrection call: the signed
// byte adjustment to apply to readPosition, and which branch produced it.
type correctionResult struct {
	delta int64
	kind  correctionKind
}

// decideCorrection implements the five-branch CorrectionPolicy from spec
// §4.4. It is a pure function of the engine's current numeric state, kept
// free of the ring and the lock so it can be exercised directly by tests.
//
// available is writePosition-readPosition computed before this insert's
// write; slotLen is the byte length of the slot about to be written;
// levelCur and maxLatency are the engine's current smoothed level and
// latency ceiling.
func decideCorrection(tol tolerances, slotSize, available, slotLen int64, levelCur, maxLatency float64) correctionResult {
	resetThreshold := -5 * (slotSize + slotLen)

	switch {
	case available < resetThreshold:
		// Consumer has raced far past the producer; snap readPosition back
		// up to writePosition instead of letting the gap keep growing.
		return correctionResult{delta: available, kind: correctionReset}

	case available+slotLen > int64(maxLatency):
		return correctionResult{delta: tol.overflowDropStep, kind: correctionOverflow}

	case available < 0 && levelCur < maxLatency-tol.underrunInc:
		shortfall := -available
		if shortfall > slotSize {
			shortfall = slotSize
		}
		return correctionResult{delta: -shortfall, kind: correctionUnderrunInc}

	case levelCur < maxLatency-tol.corrInc:
		return correctionResult{delta: -slotSize, kind: correctionCompensate}

	default:
		return correctionResult{delta: 0, kind: correctionNone}
	}
}
