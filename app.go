package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"aitotype/internal/bootstrap"
	"aitotype/internal/domain"
	"aitotype/internal/overlay"
	"aitotype/internal/settings"
	"aitotype/internal/shortcut"
	"aitotype/internal/usecase"
)

const (
	eventSession  = "aitotype:session"
	eventLevel    = "aitotype:level"
	eventHistory  = "aitotype:history"
	eventNotice   = "aitotype:notice"
	eventShortcut = "aitotype:shortcut"
	eventError    = "aitotype:error"
	eventOverlay  = "aitotype:overlay"
	eventSettings = "aitotype:settings"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services *bootstrap.Services
	bootErr  error

	shortcuts *shortcutQueue

	mu             sync.Mutex
	focused        bool
	overlayVisible bool
}

func NewApp() *App {
	return &App{focused: true}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, bootstrap.Options{})
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}
	a.services = services

	a.shortcuts = newShortcutQueue(shortcutQueueSize, services.Log)
	go a.shortcuts.run(ctx, func(event domain.ToggleEvent) {
		_ = services.Controller.HandleShortcut(ctx, event)
	})
	a.listen()
	if err := services.Start(ctx, func(form settings.Form) {
		a.Emit(eventSettings, form)
	}); err != nil {
		services.Log.Warn().Err(err).Msg("config watcher unavailable")
	}
	a.SessionStateChanged(services.Controller.Status(), domain.SessionReasonReady)
}

func (a *App) shutdown(context.Context) {
	if a.services != nil {
		a.services.Close()
	}
}

// listen subscribes to the inbound backend events.
func (a *App) listen() {
	runtime.EventsOn(a.ctx, domain.EventToggleRecording, func(data ...interface{}) {
		var event domain.ToggleEvent
		if !decodePayload(data, &event) {
			return
		}
		if event.Action == "" {
			event.Action = domain.ToggleActionToggle
		}
		a.shortcuts.push(event)
	})

	runtime.EventsOn(a.ctx, domain.EventEnhancementFallback, func(data ...interface{}) {
		var event domain.FallbackEvent
		if decodePayload(data, &event) {
			a.services.Controller.HandleEnhancementFallback(event.Reason)
		}
	})

	runtime.EventsOn(a.ctx, domain.EventOverlayStatus, func(data ...interface{}) {
		var event domain.OverlayStatusEvent
		if decodePayload(data, &event) {
			a.services.Overlay.Apply(event.Status)
			a.emitOverlay()
		}
	})

	runtime.EventsOn(a.ctx, domain.EventOverlayVisibility, func(data ...interface{}) {
		var event domain.OverlayVisibilityEvent
		if decodePayload(data, &event) {
			a.mu.Lock()
			a.overlayVisible = event.Visible
			a.mu.Unlock()
			a.emitOverlay()
		}
	})
}

// ToggleRecording is the orb click.
func (a *App) ToggleRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	err := a.services.Controller.Toggle(a.ctx)
	return a.services.Controller.Status(), err
}

// PressStart begins a hold-to-talk capture.
func (a *App) PressStart() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Controller.PressStart(a.ctx)
}

// PressEnd ends a hold-to-talk capture.
func (a *App) PressEnd() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Controller.PressEnd(a.ctx)
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.services == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.StatusError, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.StatusIdle}
	}
	return a.services.Controller.Status()
}

// GetView returns the rendered main surface.
func (a *App) GetView() usecase.View {
	if a.services == nil {
		status := a.GetStatus()
		return usecase.Render(usecase.SessionState{Status: status.State, Message: status.Message})
	}
	return a.services.Controller.View()
}

func (a *App) GetHistory() []domain.HistoryEntry {
	if a.services == nil {
		return nil
	}
	return a.services.Controller.History()
}

func (a *App) CopyLastResult() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Controller.CopyLastResult(a.ctx)
}

func (a *App) CopyHistoryEntry(index int) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Controller.CopyHistoryEntry(a.ctx, index)
}

func (a *App) DismissResult() {
	if a.services != nil {
		a.services.Controller.DismissResult()
	}
}

// GetSettings returns the settings form.
func (a *App) GetSettings() (settings.Form, error) {
	if err := a.requireReady(); err != nil {
		return settings.Form{}, err
	}
	return a.services.Settings.Form(), nil
}

func (a *App) SelectProvider(provider string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SelectProvider(provider) })
}

func (a *App) SelectEnhancementProvider(provider string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SelectEnhancementProvider(provider) })
}

func (a *App) SetAPIKey(value string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SetAPIKey(value) })
}

func (a *App) SetEnhancementAPIKey(value string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SetEnhancementAPIKey(value) })
}

func (a *App) SetModel(model string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SetModel(model) })
}

func (a *App) SetRecordMode(mode string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SetRecordMode(mode) })
}

func (a *App) SetEnhancement(enabled bool, model string, prompt string) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SetEnhancement(enabled, model, prompt) })
}

func (a *App) SetAutoCopy(enabled bool) (settings.Form, error) {
	return a.editSettings(func(s *settings.Synchronizer) { s.SetAutoCopy(enabled) })
}

// GetAutoCopy reports the persisted auto-copy preference.
func (a *App) GetAutoCopy() bool {
	if a.services == nil {
		return true
	}
	return a.services.Settings.AutoCopy()
}

// SetAutoWrite toggles auto-paste. Enabling it asks for the Accessibility
// permission up front; the config is then committed.
func (a *App) SetAutoWrite(enabled bool) (bool, error) {
	if err := a.requireReady(); err != nil {
		return false, err
	}
	if enabled {
		trusted, _ := a.services.Engine.CheckAccessibilityPermissions(a.ctx)
		if !trusted {
			_, _ = a.services.Engine.RequestAccessibilityPermissions(a.ctx)
		}
	}
	a.services.Settings.SetAutoWrite(enabled)
	if _, err := a.services.Settings.SyncBeforeSession(a.ctx); err != nil {
		a.SessionError(domain.ErrorCodeConfigSync, err.Error())
		return false, err
	}
	trusted, _ := a.services.Engine.CheckAccessibilityPermissions(a.ctx)
	return trusted, nil
}

// SaveSettings commits the form and reloads it from the backend.
func (a *App) SaveSettings() (settings.Form, error) {
	if err := a.requireReady(); err != nil {
		return settings.Form{}, err
	}
	if err := a.services.Settings.Save(a.ctx); err != nil {
		a.SessionError(domain.ErrorCodeConfigSync, err.Error())
		return settings.Form{}, err
	}
	return a.services.Settings.Form(), nil
}

// TestConnection commits the form and checks the selected provider.
func (a *App) TestConnection() (domain.ConnectionResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.ConnectionResult{}, err
	}
	if _, err := a.services.Settings.SyncBeforeSession(a.ctx); err != nil {
		return domain.ConnectionResult{}, err
	}
	return a.services.Engine.TestConnection(a.ctx)
}

func (a *App) CheckAccessibility() bool {
	if a.services == nil {
		return false
	}
	trusted, _ := a.services.Engine.CheckAccessibilityPermissions(a.ctx)
	return trusted
}

func (a *App) OpenAccessibilitySettings() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.services.Engine.OpenAccessibilitySettings(a.ctx)
}

// GetShortcut returns the bound shortcut and whether a capture is running.
func (a *App) GetShortcut() map[string]interface{} {
	if a.services == nil {
		return map[string]interface{}{"shortcut": "", "capturing": false}
	}
	return map[string]interface{}{
		"shortcut":  a.services.Shortcuts.Current(),
		"capturing": a.services.Shortcuts.Capturing(),
	}
}

// BeginShortcutCapture starts listening for the next key press as the new shortcut.
func (a *App) BeginShortcutCapture() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	err := a.services.Shortcuts.BeginCapture(a.ctx)
	if errors.Is(err, shortcut.ErrCaptureActive) {
		return nil
	}
	return err
}

// DisableShortcut unbinds the global shortcut and remembers that choice.
func (a *App) DisableShortcut() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.services.Shortcuts.Disable(a.ctx)
	return nil
}

// ShortcutKey feeds a keydown captured by the settings surface.
func (a *App) ShortcutKey(press shortcut.KeyPress) bool {
	if a.services == nil {
		return false
	}
	return a.services.Shortcuts.HandleKey(a.ctx, press)
}

// SetWindowFocused is reported by the frontend on focus and blur.
func (a *App) SetWindowFocused(focused bool) {
	a.mu.Lock()
	a.focused = focused
	a.mu.Unlock()
}

// WindowFocused reports whether the main window had focus at the last report.
func (a *App) WindowFocused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.focused
}

// GetOverlay returns the overlay view and visibility.
func (a *App) GetOverlay() map[string]interface{} {
	a.mu.Lock()
	visible := a.overlayVisible
	a.mu.Unlock()

	view := overlay.NewPresenter().Render()
	if a.services != nil {
		view = a.services.Overlay.Render()
	}
	return map[string]interface{}{"view": view, "visible": visible}
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	if a.services == nil {
		return map[string]string{}
	}

	cfg := a.services.Store.Get()
	return map[string]string{
		"provider":         string(cfg.Provider),
		"model":            cfg.Model,
		"recordMode":       string(cfg.RecordMode),
		"dataDir":          a.services.Config.DataDir,
		"audioInput":       a.services.Config.Audio.InputDevice,
		"audioInputFormat": a.services.Config.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.services == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

func (a *App) editSettings(edit func(*settings.Synchronizer)) (settings.Form, error) {
	if err := a.requireReady(); err != nil {
		return settings.Form{}, err
	}
	edit(a.services.Settings)
	return a.services.Settings.Form(), nil
}

func (a *App) emitOverlay() {
	a.Emit(eventOverlay, a.GetOverlay())
}

// Emit publishes a runtime event to the frontend and to Go listeners.
func (a *App) Emit(name string, payload any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, payload)
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(status domain.Status, reason domain.SessionStateReason) {
	message := status.Message
	if message == "" {
		message = sessionReasonMessage(reason)
	}
	a.Emit(eventSession, map[string]interface{}{
		"state":      string(status.State),
		"active":     status.Active,
		"background": status.Background,
		"reason":     string(reason),
		"message":    message,
		"view":       a.GetView(),
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	a.Emit(eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func (a *App) HistoryChanged(entries []domain.HistoryEntry) {
	a.Emit(eventHistory, entries)
}

func (a *App) AudioLevel(level float64) {
	a.Emit(eventLevel, level)
}

func (a *App) Notice(text string) {
	a.Emit(eventNotice, map[string]string{"text": text})
}

func (a *App) ShortcutChanged(binding string, capturing bool) {
	a.Emit(eventShortcut, map[string]interface{}{"shortcut": binding, "capturing": capturing})
}

// ShortcutRejected reports a captured binding that cannot be registered.
func (a *App) ShortcutRejected(binding string, reason string) {
	a.SessionError(domain.ErrorCodeShortcut, fmt.Sprintf("%s: %s", binding, reason))
}

// decodePayload reads the first event argument into out. Go emitters pass typed
// values while the frontend passes decoded JSON, so both go through JSON.
func decodePayload(data []interface{}, out any) bool {
	if len(data) == 0 || data[0] == nil {
		return false
	}
	raw, err := json.Marshal(data[0])
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonReady:
		return "Ready"
	case domain.SessionReasonRecordingStarted:
		return "Recording started"
	case domain.SessionReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.SessionReasonTranscriptDelivered:
		return "Transcript ready"
	case domain.SessionReasonTranscriptCopied:
		return "Transcript copied to clipboard"
	case domain.SessionReasonTranscriptPasted:
		return "Transcript pasted"
	case domain.SessionReasonAccidentalTap:
		return "Hold the shortcut longer to record"
	case domain.SessionReasonNoTranscript:
		return "No speech detected"
	case domain.SessionReasonDismissed:
		return "Ready"
	case domain.SessionReasonStartFailed:
		return "Recording could not start"
	case domain.SessionReasonTranscriptionFailed:
		return "Transcription failed"
	case domain.SessionReasonPasteFailed:
		return usecase.PasteFailedMessage
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeConfigSync:
		return "Settings could not be saved"
	case domain.ErrorCodeCaptureStart:
		return "Microphone could not start"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodePaste:
		return "Paste failed"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeShortcut:
		return "Shortcut registration failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
