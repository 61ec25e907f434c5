package usecase

import (
	"time"

	"aitotype/internal/domain"
)

// SessionState is the controller-owned state of the current recording cycle.
type SessionState struct {
	Status         domain.SessionStatus
	LastResultText string
	Message        string
	Notice         string
	Since          time.Time

	// BackgroundSession is latched at start from the shortcut context and
	// reset on every terminal transition.
	BackgroundSession bool

	// PendingShortcutContext is consumed by the next start transition.
	PendingShortcutContext *domain.ToggleEvent

	LastShortcutToggleAt time.Time
	HoldStartedAt        *time.Time
}

// cycle tracks the bookkeeping of one record/transcribe cycle.
type cycle struct {
	id  string
	seq uint64

	// levelDone is closed when the level pump for this cycle must stop.
	levelDone chan struct{}
}

func (c *cycle) stopLevels() {
	if c == nil || c.levelDone == nil {
		return
	}
	select {
	case <-c.levelDone:
	default:
		close(c.levelDone)
	}
}
