package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aitotype/internal/domain"
	"aitotype/internal/ports"
)

var (
	ErrNoResult = errors.New("no transcript to copy")
	ErrClosed   = errors.New("session controller is closed")
)

// ConfigSync commits settings before a session and exposes delivery preferences.
type ConfigSync interface {
	SyncBeforeSession(ctx context.Context) (domain.SttConfig, error)
	AutoWriteEnabled() bool
	AutoCopy() bool
}

// CaptureGate reports whether the shortcut is being re-bound.
type CaptureGate interface {
	Capturing() bool
}

// SessionBackend is the part of the command boundary a recording cycle uses.
type SessionBackend interface {
	ports.Recorder
	ports.Delivery
	ports.OverlayHost
}

// Config controls session timing.
type Config struct {
	ToggleDebounce    time.Duration
	HoldThreshold     time.Duration
	LevelPollInterval time.Duration
	OverlayTimeout    time.Duration
	NoticeDuration    time.Duration
	HistoryLimit      int

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.ToggleDebounce <= 0 {
		c.ToggleDebounce = 450 * time.Millisecond
	}
	if c.HoldThreshold <= 0 {
		c.HoldThreshold = 200 * time.Millisecond
	}
	if c.LevelPollInterval <= 0 {
		c.LevelPollInterval = 80 * time.Millisecond
	}
	if c.OverlayTimeout <= 0 {
		c.OverlayTimeout = 800 * time.Millisecond
	}
	if c.NoticeDuration <= 0 {
		c.NoticeDuration = 4200 * time.Millisecond
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaultHistoryLimit
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// SessionController owns the record -> transcribe -> deliver state machine.
type SessionController struct {
	backend   SessionBackend
	config    ConfigSync
	gate      CaptureGate
	events    ports.SessionEvents
	history   *HistoryCache
	finalizer transcriptFinalizer
	cfg       Config
	log       zerolog.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	overlayCalls chan overlayCall
	overlayDone  chan struct{}

	mu            sync.Mutex
	state         SessionState
	current       *cycle
	seq           uint64
	transitioning bool
	stopRequested bool
	noticeGen     uint64
	noticeTimer   *time.Timer
	closed        bool
}

func NewSessionController(
	backend SessionBackend,
	config ConfigSync,
	gate CaptureGate,
	events ports.SessionEvents,
	log zerolog.Logger,
	cfg Config,
) *SessionController {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &SessionController{
		backend:      backend,
		config:       config,
		gate:         gate,
		events:       events,
		history:      NewHistoryCache(cfg.HistoryLimit),
		finalizer:    newTranscriptFinalizer(backend, events, log),
		cfg:          cfg,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		overlayCalls: make(chan overlayCall, 8),
		overlayDone:  make(chan struct{}),
		state:        SessionState{Status: domain.StatusIdle, Since: cfg.Now()},
	}
	go runOverlayCalls(ctx, c.overlayCalls, cfg.OverlayTimeout, log, c.overlayDone)
	return c
}

// Toggle is the manual orb action: start when idle, stop when recording.
func (c *SessionController) Toggle(ctx context.Context) error {
	status, inFlight := c.peek()
	switch {
	case status == domain.StatusRecording:
		return c.stop(ctx)
	case status == domain.StatusTranscribing || inFlight:
		return nil
	default:
		return c.start(ctx, nil)
	}
}

// PressStart begins a hold-to-talk capture from the UI.
func (c *SessionController) PressStart(ctx context.Context) error {
	return c.start(ctx, nil)
}

// PressEnd ends a hold-to-talk capture from the UI.
func (c *SessionController) PressEnd(ctx context.Context) error {
	return c.stop(ctx)
}

// HandleShortcut reacts to a toggle-recording-event from the global shortcut.
func (c *SessionController) HandleShortcut(ctx context.Context, event domain.ToggleEvent) error {
	if c.gate != nil && c.gate.Capturing() {
		c.log.Debug().Str("action", string(event.Action)).Msg("shortcut ignored during capture")
		return nil
	}

	switch event.Action {
	case domain.ToggleActionStart:
		return c.start(ctx, &event)
	case domain.ToggleActionStop:
		return c.stop(ctx)
	}

	c.mu.Lock()
	now := c.cfg.Now()
	last := c.state.LastShortcutToggleAt
	if !last.IsZero() && now.Sub(last) < c.cfg.ToggleDebounce {
		c.mu.Unlock()
		c.log.Debug().Dur("since_last", now.Sub(last)).Msg("shortcut toggle debounced")
		return nil
	}
	c.state.LastShortcutToggleAt = now
	status := c.state.Status
	inFlight := c.transitioning
	c.mu.Unlock()

	switch {
	case status == domain.StatusRecording:
		return c.stop(ctx)
	case status == domain.StatusTranscribing || inFlight:
		return nil
	default:
		return c.start(ctx, &event)
	}
}

// HandleEnhancementFallback shows a transient notice that enhancement fell
// back to the raw transcript. It never touches the session state machine.
func (c *SessionController) HandleEnhancementFallback(reason string) {
	text := fallbackNoticeText(reason)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.noticeGen++
	gen := c.noticeGen
	c.state.Notice = text
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.noticeTimer = time.AfterFunc(c.cfg.NoticeDuration, func() {
		c.clearNotice(gen)
	})
	c.mu.Unlock()

	c.log.Info().Str("reason", reason).Msg("enhancement fell back to raw transcript")
	c.events.Notice(text)
}

// Status returns the current session status.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// State returns a copy of the session state.
func (c *SessionController) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.state
	if state.PendingShortcutContext != nil {
		pending := *state.PendingShortcutContext
		state.PendingShortcutContext = &pending
	}
	if state.HoldStartedAt != nil {
		started := *state.HoldStartedAt
		state.HoldStartedAt = &started
	}
	return state
}

// View renders the current state.
func (c *SessionController) View() View {
	return Render(c.State())
}

// History returns the recent transcripts, newest first.
func (c *SessionController) History() []domain.HistoryEntry {
	return c.history.Entries()
}

// CopyLastResult copies the most recent transcript to the clipboard.
func (c *SessionController) CopyLastResult(ctx context.Context) error {
	c.mu.Lock()
	text := c.state.LastResultText
	c.mu.Unlock()

	if text == "" {
		return ErrNoResult
	}
	if err := c.backend.CopyToClipboard(ctx, text); err != nil {
		return fmt.Errorf("copy last result: %w", err)
	}
	return nil
}

// CopyHistoryEntry copies the history entry at index (0 is newest).
func (c *SessionController) CopyHistoryEntry(ctx context.Context, index int) error {
	entry, ok := c.history.Get(index)
	if !ok {
		return ErrNoResult
	}
	if err := c.backend.CopyToClipboard(ctx, entry.Text); err != nil {
		return fmt.Errorf("copy history entry: %w", err)
	}
	return nil
}

// DismissResult resolves a success or error presentation back to idle.
func (c *SessionController) DismissResult() {
	c.mu.Lock()
	if c.state.Status != domain.StatusSuccess && c.state.Status != domain.StatusError {
		c.mu.Unlock()
		return
	}
	c.setStatusLocked(domain.StatusIdle, "")
	status := c.statusLocked()
	c.mu.Unlock()

	c.events.SessionStateChanged(status, domain.SessionReasonDismissed)
}

// Close stops background work. An in-flight transcription is not cancelled.
func (c *SessionController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.current.stopLevels()
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	<-c.overlayDone
}

func (c *SessionController) start(ctx context.Context, trigger *domain.ToggleEvent) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.Status.Busy() || c.transitioning {
		c.mu.Unlock()
		return nil
	}
	c.transitioning = true
	c.stopRequested = false

	c.state.PendingShortcutContext = trigger
	pending := c.state.PendingShortcutContext
	c.state.PendingShortcutContext = nil

	background := pending != nil && pending.Background
	c.state.BackgroundSession = background
	c.seq++
	cyc := &cycle{id: uuid.NewString(), seq: c.seq}
	c.mu.Unlock()

	log := c.log.With().Str("cycle", cyc.id).Bool("background", background).Logger()

	cfg, err := c.config.SyncBeforeSession(ctx)
	if err != nil {
		return c.failStart(ctx, log, domain.ErrorCodeConfigSync, err)
	}
	if err := c.backend.StartRecording(ctx); err != nil {
		return c.failStart(ctx, log, domain.ErrorCodeCaptureStart, err)
	}

	c.mu.Lock()
	c.transitioning = false
	cyc.levelDone = make(chan struct{})
	c.current = cyc
	c.state.HoldStartedAt = nil
	if cfg.RecordMode == domain.RecordModeHold {
		started := c.cfg.Now()
		c.state.HoldStartedAt = &started
	}
	c.setStatusLocked(domain.StatusRecording, "")
	status := c.statusLocked()
	stopRequested := c.stopRequested
	c.stopRequested = false
	c.mu.Unlock()

	log.Info().
		Str("provider", string(cfg.Provider)).
		Str("mode", string(cfg.RecordMode)).
		Msg("recording started")
	c.events.SessionStateChanged(status, domain.SessionReasonRecordingStarted)
	if background {
		c.showOverlay(domain.OverlayRecording)
	}

	go pumpAudioLevels(c.ctx, c.backend, c.cfg.LevelPollInterval, c.events, func() bool {
		return c.isRecording(cyc.seq)
	}, cyc.levelDone, log)

	if stopRequested {
		return c.stop(ctx)
	}
	return nil
}

func (c *SessionController) failStart(ctx context.Context, log zerolog.Logger, code domain.ErrorCode, cause error) error {
	if err := c.backend.StopRecording(ctx); err != nil {
		log.Debug().Err(err).Msg("rollback stop failed")
	}

	c.mu.Lock()
	background := c.state.BackgroundSession
	c.transitioning = false
	c.stopRequested = false
	c.state.BackgroundSession = false
	c.state.PendingShortcutContext = nil
	c.state.HoldStartedAt = nil
	c.setStatusLocked(domain.StatusError, cause.Error())
	status := c.statusLocked()
	c.mu.Unlock()

	log.Error().Err(cause).Str("code", string(code)).Msg("recording start failed")
	c.events.SessionError(code, cause.Error())
	c.events.SessionStateChanged(status, domain.SessionReasonStartFailed)
	if background {
		c.hideOverlay()
	}
	return cause
}

func (c *SessionController) stop(ctx context.Context) error {
	c.mu.Lock()
	if c.transitioning {
		if c.state.Status != domain.StatusRecording {
			// Start still in flight; stop once it lands.
			c.stopRequested = true
		}
		c.mu.Unlock()
		return nil
	}
	if c.state.Status != domain.StatusRecording {
		c.mu.Unlock()
		return nil
	}

	cyc := c.current
	cyc.stopLevels()
	background := c.state.BackgroundSession
	holdStarted := c.state.HoldStartedAt
	c.state.HoldStartedAt = nil

	if holdStarted != nil && c.cfg.Now().Sub(*holdStarted) < c.cfg.HoldThreshold {
		c.transitioning = true
		c.mu.Unlock()
		return c.cancelTap(ctx, cyc, background)
	}

	c.setStatusLocked(domain.StatusTranscribing, "")
	status := c.statusLocked()
	c.mu.Unlock()

	log := c.log.With().Str("cycle", cyc.id).Bool("background", background).Logger()
	c.events.SessionStateChanged(status, domain.SessionReasonTranscribing)
	if background {
		c.showOverlay(domain.OverlayTranscribing)
	}

	text, err := c.backend.StopAndTranscribe(ctx)
	if err != nil {
		status := c.finishCycle(domain.StatusError, err.Error(), "")
		log.Error().Err(err).Msg("transcription failed")
		c.events.SessionError(domain.ErrorCodeTranscription, err.Error())
		c.events.SessionStateChanged(status, domain.SessionReasonTranscriptionFailed)
		if background {
			c.hideOverlay()
		}
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		status := c.finishCycle(domain.StatusIdle, "No speech detected", "")
		log.Info().Msg("empty transcript")
		c.events.SessionStateChanged(status, domain.SessionReasonNoTranscript)
		if background {
			c.hideOverlay()
		}
		return nil
	}

	c.events.HistoryChanged(c.history.Add(c.cfg.Now(), text))
	if background {
		c.hideOverlay()
	}

	result := c.finalizer.Deliver(ctx, text, deliveryPolicy{
		autoCopy: c.config.AutoCopy(),
		paste:    background || c.config.AutoWriteEnabled(),
	})

	if result.pasteErr != nil {
		status := c.finishCycle(domain.StatusError, PasteFailedMessage, text)
		c.events.SessionStateChanged(status, domain.SessionReasonPasteFailed)
		return fmt.Errorf("paste transcript: %w", result.pasteErr)
	}

	status = c.finishCycle(domain.StatusSuccess, text, text)
	log.Info().
		Int("chars", len(text)).
		Bool("copied", result.copied).
		Bool("pasted", result.pasted).
		Msg("transcript delivered")
	c.events.SessionStateChanged(status, result.reason())
	return nil
}

func (c *SessionController) cancelTap(ctx context.Context, cyc *cycle, background bool) error {
	if err := c.backend.StopRecording(ctx); err != nil {
		c.log.Warn().Err(err).Str("cycle", cyc.id).Msg("failed to cancel accidental tap")
	}

	c.mu.Lock()
	c.transitioning = false
	c.stopRequested = false
	c.mu.Unlock()

	status := c.finishCycle(domain.StatusIdle, "", "")
	c.log.Debug().Str("cycle", cyc.id).Msg("hold released below threshold")
	c.events.SessionStateChanged(status, domain.SessionReasonAccidentalTap)
	if background {
		c.hideOverlay()
	}
	return nil
}

// finishCycle moves to a terminal status and clears per-cycle state.
func (c *SessionController) finishCycle(status domain.SessionStatus, message string, result string) domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.BackgroundSession = false
	c.state.HoldStartedAt = nil
	c.current.stopLevels()
	c.current = nil
	if result != "" {
		c.state.LastResultText = result
	}
	c.setStatusLocked(status, message)
	return c.statusLocked()
}

func (c *SessionController) clearNotice(gen uint64) {
	c.mu.Lock()
	if gen != c.noticeGen || c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Notice = ""
	c.noticeTimer = nil
	c.mu.Unlock()

	c.events.Notice("")
}

func (c *SessionController) showOverlay(status domain.OverlayStatus) {
	c.submitOverlay(overlayCall{
		name: "show_overlay_status",
		fn: func(ctx context.Context) error {
			return c.backend.ShowOverlayStatus(ctx, status)
		},
	})
}

func (c *SessionController) hideOverlay() {
	c.submitOverlay(overlayCall{
		name: "hide_overlay",
		fn:   c.backend.HideOverlay,
	})
}

func (c *SessionController) submitOverlay(call overlayCall) {
	select {
	case c.overlayCalls <- call:
	case <-c.ctx.Done():
	default:
		c.log.Warn().Str("call", call.name).Msg("overlay queue full, call dropped")
	}
}

func (c *SessionController) isRecording(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.seq == seq && c.state.Status == domain.StatusRecording
}

func (c *SessionController) peek() (domain.SessionStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status, c.transitioning
}

func (c *SessionController) setStatusLocked(status domain.SessionStatus, message string) {
	c.state.Status = status
	c.state.Message = message
	c.state.Since = c.cfg.Now()
}

func (c *SessionController) statusLocked() domain.Status {
	return domain.Status{
		State:      c.state.Status,
		Active:     c.state.Status.Busy(),
		Message:    c.state.Message,
		Background: c.state.BackgroundSession,
		Since:      c.state.Since,
	}
}
