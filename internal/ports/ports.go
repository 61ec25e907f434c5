package ports

import (
	"context"

	"aitotype/internal/domain"
)

// Recorder drives microphone capture and transcription on the backend.
type Recorder interface {
	StartRecording(ctx context.Context) error
	// StopRecording discards the current capture. It is used only for rollback.
	StopRecording(ctx context.Context) error
	StopAndTranscribe(ctx context.Context) (string, error)
	GetAudioLevel(ctx context.Context) (float64, error)
}

// ConfigStore persists the canonical transcription configuration.
type ConfigStore interface {
	GetSttConfig(ctx context.Context) (domain.SttConfig, error)
	SaveSttConfig(ctx context.Context, cfg domain.SttConfig) error
	TestConnection(ctx context.Context) (domain.ConnectionResult, error)
}

// Delivery puts transcripts where the user wants them.
type Delivery interface {
	CopyToClipboard(ctx context.Context, text string) error
	PasteText(ctx context.Context, text string) error
}

// Accessibility wraps the OS permission needed for paste injection.
type Accessibility interface {
	CheckAccessibilityPermissions(ctx context.Context) (bool, error)
	RequestAccessibilityPermissions(ctx context.Context) (bool, error)
	OpenAccessibilitySettings(ctx context.Context) error
}

// ShortcutRegistrar owns the single OS-level global shortcut.
type ShortcutRegistrar interface {
	// UpdateShortcut replaces the registered shortcut; an empty string disables it.
	UpdateShortcut(ctx context.Context, shortcut string) error
	IsShortcutReady(ctx context.Context) (bool, error)
}

// OverlayHost shows the minimal status surface used by background sessions.
type OverlayHost interface {
	ShowOverlayStatus(ctx context.Context, status domain.OverlayStatus) error
	HideOverlay(ctx context.Context) error
}

// Backend is the full command boundary.
type Backend interface {
	Recorder
	ConfigStore
	Delivery
	Accessibility
	ShortcutRegistrar
	OverlayHost
}

// Preferences is the durable local key/value store.
type Preferences interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
	Delete(key string) error
}

// Emitter publishes named events with a JSON-serializable payload.
type Emitter interface {
	Emit(name string, payload any)
}

// SessionEvents receives session lifecycle updates.
type SessionEvents interface {
	SessionStateChanged(status domain.Status, reason domain.SessionStateReason)
	SessionError(code domain.ErrorCode, detail string)
	HistoryChanged(entries []domain.HistoryEntry)
	AudioLevel(level float64)
	// Notice shows a transient hint; an empty text clears it.
	Notice(text string)
}

// ShortcutEvents receives shortcut binding updates.
type ShortcutEvents interface {
	ShortcutChanged(shortcut string, capturing bool)
	// ShortcutRejected reports a captured binding the OS cannot register.
	ShortcutRejected(shortcut string, reason string)
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionEvents
	ShortcutEvents
}
