package hotkey

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	hk "golang.design/x/hotkey"

	"aitotype/internal/domain"
)

// ErrNotReady is returned by UpdateShortcut before the registrar is marked ready.
var ErrNotReady = errors.New("global shortcut is not ready")

// Handle is one registered OS hotkey.
type Handle interface {
	Unregister() error
	Keydown() <-chan hk.Event
	Keyup() <-chan hk.Event
}

// RegisterFunc registers a binding with the OS.
type RegisterFunc func(Binding) (Handle, error)

// RegisterOS registers b through golang.design/x/hotkey.
func RegisterOS(b Binding) (Handle, error) {
	h := hk.New(b.Mods, b.Key)
	if err := h.Register(); err != nil {
		return nil, err
	}
	return h, nil
}

// Options wires the registrar to the rest of the app.
type Options struct {
	Register RegisterFunc
	// Emit publishes toggle-recording-event.
	Emit func(domain.ToggleEvent)
	// Mode reports the current record mode.
	Mode func() domain.RecordMode
	// Focused reports whether the main window has focus.
	Focused func() bool
}

// Registrar owns the single global shortcut and turns its presses into toggle events.
type Registrar struct {
	opts  Options
	log   zerolog.Logger
	ready atomic.Bool

	mu      sync.Mutex
	current Handle
	stop    chan struct{}
	accel   string
}

func NewRegistrar(opts Options, log zerolog.Logger) *Registrar {
	if opts.Register == nil {
		opts.Register = RegisterOS
	}
	if opts.Emit == nil {
		opts.Emit = func(domain.ToggleEvent) {}
	}
	if opts.Mode == nil {
		opts.Mode = func() domain.RecordMode { return domain.RecordModeToggle }
	}
	if opts.Focused == nil {
		opts.Focused = func() bool { return false }
	}
	return &Registrar{opts: opts, log: log}
}

// MarkReady allows registrations. It is called once the host event loop runs.
func (r *Registrar) MarkReady() {
	r.ready.Store(true)
}

func (r *Registrar) IsShortcutReady(context.Context) (bool, error) {
	return r.ready.Load(), nil
}

// UpdateShortcut drops any registration, then registers accel unless it is empty.
func (r *Registrar) UpdateShortcut(_ context.Context, accel string) error {
	if !r.ready.Load() {
		return ErrNotReady
	}
	accel = strings.TrimSpace(accel)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked()
	if accel == "" {
		r.log.Info().Msg("global shortcut disabled")
		return nil
	}

	binding, err := Parse(accel)
	if err != nil {
		return err
	}
	handle, err := r.opts.Register(binding)
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	r.current, r.stop, r.accel = handle, stop, accel
	go r.listen(handle, stop)

	r.log.Info().Str("shortcut", accel).Msg("global shortcut registered")
	return nil
}

// Current returns the registered shortcut, or "" when none is bound.
func (r *Registrar) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accel
}

// Close drops the registration.
func (r *Registrar) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked()
}

func (r *Registrar) unregisterLocked() {
	if r.current == nil {
		return
	}
	close(r.stop)
	if err := r.current.Unregister(); err != nil {
		r.log.Debug().Err(err).Msg("unregister shortcut")
	}
	r.current, r.stop, r.accel = nil, nil, ""
}

func (r *Registrar) listen(handle Handle, stop <-chan struct{}) {
	down, up := handle.Keydown(), handle.Keyup()
	for {
		select {
		case <-stop:
			return
		case _, ok := <-down:
			if !ok {
				return
			}
			if r.opts.Mode() == domain.RecordModeHold {
				r.emit(domain.ToggleActionStart)
			} else {
				r.emit(domain.ToggleActionToggle)
			}
		case _, ok := <-up:
			if !ok {
				return
			}
			if r.opts.Mode() == domain.RecordModeHold {
				r.emit(domain.ToggleActionStop)
			}
		}
	}
}

func (r *Registrar) emit(action domain.ToggleAction) {
	r.opts.Emit(domain.ToggleEvent{Action: action, Background: !r.opts.Focused()})
}
