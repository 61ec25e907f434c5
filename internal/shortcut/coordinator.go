package shortcut

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"aitotype/internal/ports"
)

// PrefKey is the preference that holds the last bound shortcut. A stored
// empty value means the shortcut was disabled.
const PrefKey = "aitotype_shortcut"

var (
	ErrCaptureActive = errors.New("shortcut capture already in progress")
	ErrNotReady      = errors.New("global shortcut subsystem is not ready")
)

// Config controls binding defaults and the readiness check.
type Config struct {
	Default       string
	ReadyAttempts int
	ReadyDelay    time.Duration
	// Validate rejects bindings the OS registrar cannot bind. Optional.
	Validate func(binding string) error
}

// KeyPress is one keydown observed while capturing.
type KeyPress struct {
	Key   string `json:"key"`
	Meta  bool   `json:"meta"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
}

// Modifiers lists the held modifiers using their raw names.
func (k KeyPress) Modifiers() []string {
	mods := make([]string, 0, 4)
	if k.Meta {
		mods = append(mods, "Command")
	}
	if k.Ctrl {
		mods = append(mods, "Ctrl")
	}
	if k.Alt {
		mods = append(mods, "Alt")
	}
	if k.Shift {
		mods = append(mods, "Shift")
	}
	return mods
}

// keyListener is the single live capture listener.
type keyListener struct {
	previous string
}

// Coordinator owns the global shortcut binding and the interactive re-binding flow.
type Coordinator struct {
	registrar ports.ShortcutRegistrar
	prefs     ports.Preferences
	events    ports.ShortcutEvents
	log       zerolog.Logger
	cfg       Config

	ready atomic.Bool

	mu        sync.Mutex
	capturing bool
	listener  *keyListener
	current   string
}

func NewCoordinator(
	registrar ports.ShortcutRegistrar,
	prefs ports.Preferences,
	events ports.ShortcutEvents,
	log zerolog.Logger,
	cfg Config,
) *Coordinator {
	if cfg.ReadyAttempts <= 0 {
		cfg.ReadyAttempts = 30
	}
	if cfg.ReadyDelay <= 0 {
		cfg.ReadyDelay = 100 * time.Millisecond
	}
	return &Coordinator{
		registrar: registrar,
		prefs:     prefs,
		events:    events,
		log:       log,
		cfg:       cfg,
	}
}

// Init restores the persisted binding and registers it.
func (c *Coordinator) Init(ctx context.Context) {
	saved := c.saved()

	c.mu.Lock()
	c.current = saved
	c.mu.Unlock()

	c.events.ShortcutChanged(saved, false)
	c.apply(ctx, saved)
}

// Current returns the active binding.
func (c *Coordinator) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Capturing reports whether a re-binding capture is active.
func (c *Coordinator) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}

// BeginCapture disables the live binding and starts listening for one key press.
func (c *Coordinator) BeginCapture(ctx context.Context) error {
	c.mu.Lock()
	if c.capturing {
		c.mu.Unlock()
		return ErrCaptureActive
	}
	c.capturing = true
	c.mu.Unlock()

	previous := c.saved()
	c.events.ShortcutChanged("", true)

	// The old binding must not fire while the user is choosing a new one.
	if err := c.update(ctx, ""); err != nil {
		c.mu.Lock()
		c.detachLocked()
		current := c.current
		c.mu.Unlock()

		c.events.ShortcutChanged(current, false)
		return fmt.Errorf("release current shortcut: %w", err)
	}

	c.mu.Lock()
	c.listener = &keyListener{previous: previous}
	c.mu.Unlock()
	return nil
}

// HandleKey feeds a keydown to the capture listener. It reports whether the
// capture finished.
func (c *Coordinator) HandleKey(ctx context.Context, press KeyPress) bool {
	c.mu.Lock()
	listener := c.listener
	if listener == nil {
		c.mu.Unlock()
		return false
	}

	if press.Key == "Escape" {
		c.detachLocked()
		c.current = listener.previous
		c.mu.Unlock()

		c.log.Debug().Str("shortcut", listener.previous).Msg("shortcut capture aborted")
		c.events.ShortcutChanged(listener.previous, false)
		c.apply(ctx, listener.previous)
		return true
	}

	if IsModifierKey(press.Key) {
		c.mu.Unlock()
		return false
	}

	binding, ok := Normalize(press.Modifiers(), press.Key)
	if !ok {
		c.mu.Unlock()
		return false
	}
	if c.cfg.Validate != nil {
		if err := c.cfg.Validate(binding); err != nil {
			c.mu.Unlock()

			c.log.Warn().Err(err).Str("shortcut", binding).Msg("shortcut rejected, still capturing")
			c.events.ShortcutRejected(binding, err.Error())
			return false
		}
	}

	c.detachLocked()
	c.current = binding
	c.mu.Unlock()

	c.log.Info().Str("shortcut", binding).Msg("shortcut captured")
	c.persist(binding)
	c.events.ShortcutChanged(binding, false)
	c.apply(ctx, binding)
	return true
}

// Disable unbinds the global shortcut and persists the empty binding, so it
// stays off across restarts. A running capture is dropped.
func (c *Coordinator) Disable(ctx context.Context) {
	c.mu.Lock()
	c.detachLocked()
	c.current = ""
	c.mu.Unlock()

	c.log.Info().Msg("shortcut disabled")
	c.persist("")
	c.events.ShortcutChanged("", false)
	_ = c.update(ctx, "")
}

func (c *Coordinator) detachLocked() {
	c.listener = nil
	c.capturing = false
}

func (c *Coordinator) apply(ctx context.Context, binding string) {
	if binding == "" {
		return
	}
	_ = c.update(ctx, binding)
}

// update pushes a binding to the registrar. Failures are logged; callers that
// cannot continue without the update check the error.
func (c *Coordinator) update(ctx context.Context, binding string) error {
	if err := c.waitReady(ctx); err != nil {
		c.log.Warn().Err(err).Str("shortcut", binding).Msg("shortcut registration abandoned")
		return err
	}
	if err := c.registrar.UpdateShortcut(ctx, binding); err != nil {
		c.log.Error().Err(err).Str("shortcut", binding).Msg("shortcut update failed")
		return err
	}
	return nil
}

// waitReady polls the registrar until it is ready or the attempt ceiling is hit.
// Readiness is cached for the lifetime of the coordinator.
func (c *Coordinator) waitReady(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	for attempt := 1; attempt <= c.cfg.ReadyAttempts; attempt++ {
		ok, err := c.registrar.IsShortcutReady(ctx)
		if err != nil {
			c.log.Debug().Err(err).Int("attempt", attempt).Msg("shortcut readiness check failed")
		}
		if ok {
			c.ready.Store(true)
			return nil
		}
		if attempt == c.cfg.ReadyAttempts {
			break
		}

		timer := time.NewTimer(c.cfg.ReadyDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return ErrNotReady
}

func (c *Coordinator) saved() string {
	if value, ok := c.prefs.Get(PrefKey); ok {
		return value
	}
	return c.cfg.Default
}

func (c *Coordinator) persist(binding string) {
	if err := c.prefs.Set(PrefKey, binding); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist shortcut")
	}
}
