package domain

import "time"

// SessionStatus models the record -> transcribe -> deliver lifecycle.
type SessionStatus string

const (
	StatusIdle         SessionStatus = "idle"
	StatusRecording    SessionStatus = "recording"
	StatusTranscribing SessionStatus = "transcribing"
	StatusSuccess      SessionStatus = "success"
	StatusError        SessionStatus = "error"
)

// Busy reports whether a capture or transcription is in progress.
func (s SessionStatus) Busy() bool {
	return s == StatusRecording || s == StatusTranscribing
}

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady               SessionStateReason = "ready"
	SessionReasonRecordingStarted    SessionStateReason = "recording_started"
	SessionReasonTranscribing        SessionStateReason = "transcribing"
	SessionReasonTranscriptDelivered SessionStateReason = "transcript_delivered"
	SessionReasonTranscriptCopied    SessionStateReason = "transcript_copied"
	SessionReasonTranscriptPasted    SessionStateReason = "transcript_pasted"
	SessionReasonAccidentalTap       SessionStateReason = "accidental_tap"
	SessionReasonNoTranscript        SessionStateReason = "no_transcript"
	SessionReasonDismissed           SessionStateReason = "dismissed"
	SessionReasonStartFailed         SessionStateReason = "start_failed"
	SessionReasonTranscriptionFailed SessionStateReason = "transcription_failed"
	SessionReasonPasteFailed         SessionStateReason = "paste_failed"
)

// ErrorCode identifies non-fatal and fatal controller errors.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeConfigSync    ErrorCode = "config_sync"
	ErrorCodeCaptureStart  ErrorCode = "capture_start"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodePaste         ErrorCode = "paste"
	ErrorCodeClipboard     ErrorCode = "clipboard"
	ErrorCodeShortcut      ErrorCode = "shortcut"
)

// RecordMode selects how the capture trigger behaves.
type RecordMode string

const (
	RecordModeToggle RecordMode = "toggle"
	RecordModeHold   RecordMode = "hold"
)

// NormalizeRecordMode maps unknown values to toggle.
func NormalizeRecordMode(mode string) RecordMode {
	if RecordMode(mode) == RecordModeHold {
		return RecordModeHold
	}
	return RecordModeToggle
}

// Provider identifies a transcription or enhancement backend.
type Provider string

const (
	ProviderOpenRouter  Provider = "openrouter"
	ProviderSiliconFlow Provider = "siliconflow"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderOpenRouter, ProviderSiliconFlow}

// NormalizeProvider maps unknown values to OpenRouter.
func NormalizeProvider(provider string) Provider {
	if Provider(provider) == ProviderSiliconFlow {
		return ProviderSiliconFlow
	}
	return ProviderOpenRouter
}

// EnhancementConfig configures the optional text-enhancement pass.
type EnhancementConfig struct {
	Enabled  bool     `json:"enabled"`
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
	Prompt   string   `json:"prompt"`
	APIKey   string   `json:"api_key"`
}

// SttConfig is the canonical configuration pushed to the backend before every session.
type SttConfig struct {
	Provider    Provider          `json:"provider"`
	Model       string            `json:"model"`
	APIKey      string            `json:"api_key"`
	BaseURL     string            `json:"base_url"`
	AutoWrite   bool              `json:"auto_write"`
	RecordMode  RecordMode        `json:"record_mode"`
	Enhancement EnhancementConfig `json:"enhancement"`
}

// HistoryEntry is one recent transcript.
type HistoryEntry struct {
	Time string `json:"time"`
	Text string `json:"text"`
}

// ToggleAction is the action carried by a shortcut event.
type ToggleAction string

const (
	ToggleActionToggle ToggleAction = "toggle"
	ToggleActionStart  ToggleAction = "start"
	ToggleActionStop   ToggleAction = "stop"
)

// Names of the events exchanged with the presentation layer.
const (
	EventToggleRecording     = "toggle-recording-event"
	EventEnhancementFallback = "enhancement-fallback-event"
	EventOverlayStatus       = "overlay-status"
	EventOverlayVisibility   = "overlay-visibility"
)

// ToggleEvent is the payload of toggle-recording-event.
type ToggleEvent struct {
	Action     ToggleAction `json:"action"`
	Background bool         `json:"background"`
}

// FallbackEvent is the payload of enhancement-fallback-event.
type FallbackEvent struct {
	Reason string `json:"reason"`
}

// OverlayStatus is the only status the overlay surface mirrors.
type OverlayStatus string

const (
	OverlayRecording    OverlayStatus = "recording"
	OverlayTranscribing OverlayStatus = "transcribing"
)

// OverlayStatusEvent is the payload of overlay-status.
type OverlayStatusEvent struct {
	Status string `json:"status"`
}

// OverlayVisibilityEvent is the payload of overlay-visibility.
type OverlayVisibilityEvent struct {
	Visible bool `json:"visible"`
}

// ConnectionResult is returned by the backend connection test.
type ConnectionResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Provider  Provider `json:"provider"`
	Model     string   `json:"model"`
	LatencyMS int64    `json:"latency_ms"`
}

// Status summarizes the current session for the UI.
type Status struct {
	State      SessionStatus `json:"state"`
	Active     bool          `json:"active"`
	Message    string        `json:"message,omitempty"`
	Background bool          `json:"background"`
	Since      time.Time     `json:"since"`
}
