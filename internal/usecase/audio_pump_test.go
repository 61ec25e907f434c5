package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type scriptedLevels struct {
	mu     sync.Mutex
	levels []float64
	errs   []error
	calls  int
}

func (s *scriptedLevels) GetAudioLevel(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}
	if i < len(s.levels) {
		return s.levels[i], nil
	}
	return 0.1, nil
}

func TestPumpAudioLevelsClampsAndSkipsFailures(t *testing.T) {
	t.Parallel()

	source := &scriptedLevels{
		levels: []float64{0, 1.7, -0.2, math.NaN(), 0.4},
		errs:   []error{errors.New("device busy")},
	}
	events := &fakeEventSink{}
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		pumpAudioLevels(context.Background(), source, time.Millisecond, events, func() bool { return true }, done, zerolog.Nop())
	}()

	waitFor(t, "four level events", func() bool { return len(events.snapshotLevels()) >= 4 })
	close(done)
	<-finished

	levels := events.snapshotLevels()
	want := []float64{1, 0, 0, 0.4}
	for i, w := range want {
		if levels[i] != w {
			t.Fatalf("level %d: expected %v, got %v (all %v)", i, w, levels[i], levels)
		}
	}
}

func TestPumpAudioLevelsStopsWhenCycleEnds(t *testing.T) {
	t.Parallel()

	source := &scriptedLevels{}
	events := &fakeEventSink{}
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		pumpAudioLevels(context.Background(), source, time.Millisecond, events, func() bool { return false }, make(chan struct{}), zerolog.Nop())
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pump kept running after the cycle ended")
	}
	if got := len(events.snapshotLevels()); got != 0 {
		t.Fatalf("expected no level events, got %d", got)
	}
}

func TestPumpAudioLevelsStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		pumpAudioLevels(ctx, &scriptedLevels{}, time.Hour, &fakeEventSink{}, func() bool { return true }, make(chan struct{}), zerolog.Nop())
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pump ignored context cancellation")
	}
}
