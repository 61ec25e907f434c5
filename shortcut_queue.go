package main

import (
	"context"

	"github.com/rs/zerolog"

	"aitotype/internal/domain"
)

const shortcutQueueSize = 32

// shortcutQueue hands global shortcut events to a single worker so a hold
// release is never handled before its press.
type shortcutQueue struct {
	events chan domain.ToggleEvent
	log    zerolog.Logger
}

func newShortcutQueue(size int, log zerolog.Logger) *shortcutQueue {
	return &shortcutQueue{events: make(chan domain.ToggleEvent, size), log: log}
}

// push enqueues event without blocking the runtime's event dispatch. It
// reports false when the queue is full and the event was dropped.
func (q *shortcutQueue) push(event domain.ToggleEvent) bool {
	select {
	case q.events <- event:
		return true
	default:
		q.log.Warn().Str("action", string(event.Action)).Msg("shortcut queue full, event dropped")
		return false
	}
}

// run handles events in arrival order until ctx is done. handle may block
// through a whole transcription.
func (q *shortcutQueue) run(ctx context.Context, handle func(domain.ToggleEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-q.events:
			handle(event)
		}
	}
}
