package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"aitotype/internal/domain"
)

func newTestController(backend *fakeBackend, config *fakeConfig, events *fakeEventSink, clock *fakeClock) *SessionController {
	controller := NewSessionController(backend, config, nil, events, zerolog.Nop(), Config{
		LevelPollInterval: 5 * time.Millisecond,
		OverlayTimeout:    50 * time.Millisecond,
		NoticeDuration:    30 * time.Millisecond,
		Now:               clock.Now,
	})
	return controller
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 26, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// callLog records the order of boundary calls across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.snapshot() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeBackend struct {
	log *callLog

	mu             sync.Mutex
	startErr       error
	startGate      chan struct{}
	transcript     string
	transcribeErr  error
	transcribeGate chan struct{}
	copyErr        error
	pasteErr       error
	overlayErr     error
	copied         []string
	pasted         []string
	overlays       []string

	level        float64
	levelDelay   time.Duration
	levelCalls   int
	levelActive  int
	levelOverlap bool
}

func newFakeBackend(log *callLog) *fakeBackend {
	return &fakeBackend{log: log, transcript: "hello world", level: 0.5}
}

func (f *fakeBackend) StartRecording(_ context.Context) error {
	f.log.add("start_recording")
	f.mu.Lock()
	gate := f.startGate
	err := f.startErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeBackend) StopRecording(_ context.Context) error {
	f.log.add("stop_recording")
	return nil
}

func (f *fakeBackend) StopAndTranscribe(_ context.Context) (string, error) {
	f.log.add("stop_and_transcribe")
	f.mu.Lock()
	gate := f.transcribeGate
	text, err := f.transcript, f.transcribeErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return text, err
}

func (f *fakeBackend) GetAudioLevel(_ context.Context) (float64, error) {
	f.mu.Lock()
	f.levelCalls++
	f.levelActive++
	if f.levelActive > 1 {
		f.levelOverlap = true
	}
	delay, level := f.levelDelay, f.level
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.levelActive--
	f.mu.Unlock()
	return level, nil
}

func (f *fakeBackend) CopyToClipboard(_ context.Context, text string) error {
	f.log.add("copy_to_clipboard")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copied = append(f.copied, text)
	return nil
}

func (f *fakeBackend) PasteText(_ context.Context, text string) error {
	f.log.add("paste_text")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pasteErr != nil {
		return f.pasteErr
	}
	f.pasted = append(f.pasted, text)
	return nil
}

func (f *fakeBackend) ShowOverlayStatus(_ context.Context, status domain.OverlayStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlays = append(f.overlays, "show:"+string(status))
	return f.overlayErr
}

func (f *fakeBackend) HideOverlay(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlays = append(f.overlays, "hide")
	return f.overlayErr
}

func (f *fakeBackend) snapshotCopied() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.copied...)
}

func (f *fakeBackend) snapshotPasted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pasted...)
}

func (f *fakeBackend) snapshotOverlays() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.overlays...)
}

func (f *fakeBackend) snapshotLevels() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levelCalls, f.levelOverlap
}

type fakeConfig struct {
	log *callLog

	mu        sync.Mutex
	mode      domain.RecordMode
	syncErr   error
	autoCopy  bool
	autoWrite bool
}

func newFakeConfig(log *callLog) *fakeConfig {
	return &fakeConfig{log: log, mode: domain.RecordModeToggle, autoCopy: true}
}

func (f *fakeConfig) SyncBeforeSession(_ context.Context) (domain.SttConfig, error) {
	f.log.add("save_stt_config")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncErr != nil {
		return domain.SttConfig{}, f.syncErr
	}
	return domain.SttConfig{
		Provider:   domain.ProviderOpenRouter,
		Model:      "google/gemini-3-flash-preview",
		AutoWrite:  f.autoWrite,
		RecordMode: f.mode,
	}, nil
}

func (f *fakeConfig) AutoWriteEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoWrite
}

func (f *fakeConfig) AutoCopy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.autoCopy
}

type fakeGate struct {
	mu        sync.Mutex
	capturing bool
}

func (g *fakeGate) Capturing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capturing
}

type stateEvent struct {
	status domain.Status
	reason domain.SessionStateReason
}

type errorEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeEventSink struct {
	mu      sync.Mutex
	states  []stateEvent
	errors  []errorEvent
	history [][]domain.HistoryEntry
	levels  []float64
	notices []string
}

func (f *fakeEventSink) SessionStateChanged(status domain.Status, reason domain.SessionStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{status: status, reason: reason})
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errorEvent{code: code, detail: detail})
}

func (f *fakeEventSink) HistoryChanged(entries []domain.HistoryEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, entries)
}

func (f *fakeEventSink) AudioLevel(level float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = append(f.levels, level)
}

func (f *fakeEventSink) Notice(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, text)
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stateEvent(nil), f.states...)
}

func (f *fakeEventSink) snapshotErrors() []errorEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]errorEvent(nil), f.errors...)
}

func (f *fakeEventSink) snapshotLevels() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.levels...)
}

func (f *fakeEventSink) snapshotNotices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.notices...)
}

func (f *fakeEventSink) lastState() stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return stateEvent{}
	}
	return f.states[len(f.states)-1]
}
