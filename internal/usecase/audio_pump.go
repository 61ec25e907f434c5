package usecase

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"aitotype/internal/ports"
)

// levelSource is the part of the recorder the level pump needs.
type levelSource interface {
	GetAudioLevel(ctx context.Context) (float64, error)
}

// pumpAudioLevels polls the recorder on a fixed interval until done is closed.
// Polls run inline, so a slow poll delays the next tick instead of overlapping
// it. current reports whether the cycle is still recording; a level read
// after the cycle moved on is dropped.
func pumpAudioLevels(
	ctx context.Context,
	source levelSource,
	interval time.Duration,
	events ports.SessionEvents,
	current func() bool,
	done <-chan struct{},
	log zerolog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
		}

		level, err := source.GetAudioLevel(ctx)
		if err != nil {
			failures++
			if failures == 1 {
				log.Debug().Err(err).Msg("audio level poll failed")
			}
			continue
		}
		failures = 0

		select {
		case <-done:
			return
		default:
		}
		if !current() {
			return
		}
		events.AudioLevel(clampLevel(level))
	}
}

func clampLevel(level float64) float64 {
	switch {
	case math.IsNaN(level):
		return 0
	case level < 0:
		return 0
	case level > 1:
		return 1
	default:
		return level
	}
}
