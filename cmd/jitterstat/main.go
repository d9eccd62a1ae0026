// Command jitterstat drives a jitter.Engine with a synthetic network feed
// and a synthetic audio puller, logging periodic stats. It stands in for the
// real UDP receiver and audio callback from spec.md §1, which are out of
// scope for this module and are referenced only through jitter.Engine's
// public operations.
package main

import (
	"math/rand"
	"time"

	"github.com/xyproto/env/v2"
	"go.uber.org/zap"

	"github.com/gojitter/jitterbuf/pkg/jitter"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	slotSize := env.Int("JITTERSTAT_SLOT_SIZE", 128)
	maxLatency := env.Int("JITTERSTAT_MAX_LATENCY", slotSize*8)
	periods := env.Int("JITTERSTAT_PERIODS", 2000)

	cfg := jitter.Config{
		SlotSize:       slotSize,
		MaxLatency:     maxLatency,
		TotalSize:      maxLatency + slotSize*8,
		Strategy:       jitter.StrategyDefault,
		MonitorLatency: maxLatency / 2,
		Channels:       2,
		BytesPerSample: 2,
		Logger:         logger,
	}

	engine, err := jitter.New(cfg)
	if err != nil {
		logger.Fatal("invalid jitter config", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(1))
	slot := make([]byte, slotSize)
	dst := make([]byte, slotSize)
	monitor := make([]byte, slotSize)

	for i := 0; i < periods; i++ {
		// Simulate jittery arrival: most periods deliver one slot, some
		// deliver none (a stand-alone loss notification), and a few deliver
		// one slot that also reports a slot of loss before it.
		switch {
		case rng.Float64() < 0.05:
			engine.ProcessLoss(slotSize)
		default:
			fill(slot, byte(i))
			lost := 0
			if rng.Float64() < 0.02 {
				lost = slotSize
			}
			engine.Insert(slot, len(slot), lost)
		}

		engine.Read(dst)
		engine.ReadMonitor(monitor)

		if i%200 == 0 {
			logger.Info("jitter buffer snapshot", zap.Int("period", i), zap.Object("stats", engine.Stats()))
		}

		time.Sleep(time.Microsecond) // keep the demo from busy-spinning
	}
}

func fill(buf []byte, seed byte) {
	for i := range buf {
		buf[i] = seed + byte(i)
	}
}
