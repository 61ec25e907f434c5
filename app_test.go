package main

import (
	"errors"
	"testing"

	"aitotype/internal/domain"
	"aitotype/internal/usecase"
)

func TestSessionReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.SessionStateReason]string{
		domain.SessionReasonReady:               "Ready",
		domain.SessionReasonRecordingStarted:    "Recording started",
		domain.SessionReasonTranscribing:        "Recording stopped. Transcribing...",
		domain.SessionReasonTranscriptDelivered: "Transcript ready",
		domain.SessionReasonTranscriptCopied:    "Transcript copied to clipboard",
		domain.SessionReasonTranscriptPasted:    "Transcript pasted",
		domain.SessionReasonAccidentalTap:       "Hold the shortcut longer to record",
		domain.SessionReasonNoTranscript:        "No speech detected",
		domain.SessionReasonDismissed:           "Ready",
		domain.SessionReasonStartFailed:         "Recording could not start",
		domain.SessionReasonTranscriptionFailed: "Transcription failed",
		domain.SessionReasonPasteFailed:         usecase.PasteFailedMessage,
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := sessionReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := sessionReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:       "Startup failed",
		domain.ErrorCodeConfigSync:    "Settings could not be saved",
		domain.ErrorCodeCaptureStart:  "Microphone could not start",
		domain.ErrorCodeTranscription: "Transcription error",
		domain.ErrorCodePaste:         "Paste failed",
		domain.ErrorCodeClipboard:     "Clipboard write failed",
		domain.ErrorCodeShortcut:      "Shortcut registration failed",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.StatusIdle || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.StatusError || status.Active || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}

	view := app.GetView()
	if view.Status != domain.StatusError || view.Instruction != "boot" {
		t.Fatalf("unexpected boot view: %+v", view)
	}
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	var typed domain.ToggleEvent
	if !decodePayload([]interface{}{domain.ToggleEvent{Action: domain.ToggleActionStart, Background: true}}, &typed) {
		t.Fatalf("expected typed payload to decode")
	}
	if typed.Action != domain.ToggleActionStart || !typed.Background {
		t.Fatalf("unexpected typed payload: %+v", typed)
	}

	var fromJS domain.ToggleEvent
	if !decodePayload([]interface{}{map[string]interface{}{"background": true}}, &fromJS) {
		t.Fatalf("expected map payload to decode")
	}
	if fromJS.Action != "" || !fromJS.Background {
		t.Fatalf("unexpected map payload: %+v", fromJS)
	}

	var fallback domain.FallbackEvent
	if decodePayload(nil, &fallback) || decodePayload([]interface{}{nil}, &fallback) {
		t.Fatalf("expected empty payloads to be rejected")
	}
	if decodePayload([]interface{}{"not an object"}, &fallback) {
		t.Fatalf("expected mismatched payload to be rejected")
	}
}

func TestWindowFocusTracking(t *testing.T) {
	t.Parallel()

	app := NewApp()
	if !app.WindowFocused() {
		t.Fatalf("expected a new window to start focused")
	}
	app.SetWindowFocused(false)
	if app.WindowFocused() {
		t.Fatalf("expected blur to be recorded")
	}
}

func TestEmitWithoutRuntimeIsNoop(t *testing.T) {
	t.Parallel()

	app := &App{}
	app.Emit(eventNotice, "ignored")
	app.SessionStateChanged(domain.Status{State: domain.StatusIdle}, domain.SessionReasonReady)
	app.SessionError(domain.ErrorCodeStartup, "x")
	app.ShortcutRejected("Control+Backspace", "unsupported key")
}

func TestDisableShortcutRequiresServices(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.DisableShortcut(); err == nil {
		t.Fatalf("expected uninitialized error")
	}
}
