package bootstrap

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"aitotype/internal/accessibility"
	"aitotype/internal/audio"
	"aitotype/internal/config"
	"aitotype/internal/domain"
	"aitotype/internal/engine"
	"aitotype/internal/hotkey"
	"aitotype/internal/keyboard"
	"aitotype/internal/overlay"
	"aitotype/internal/ports"
	"aitotype/internal/prefs"
	"aitotype/internal/providers"
	"aitotype/internal/settings"
	"aitotype/internal/shortcut"
	"aitotype/internal/store"
	"aitotype/internal/usecase"
	"aitotype/internal/vocabulary"
)

// Host is the desktop shell the runtime graph reports to.
type Host interface {
	ports.EventSink
	ports.Emitter
	// WindowFocused reports whether the main window has focus.
	WindowFocused() bool
}

// Services is the assembled runtime graph.
type Services struct {
	Config     config.Config
	Log        zerolog.Logger
	Controller *usecase.SessionController
	Settings   *settings.Synchronizer
	Shortcuts  *shortcut.Coordinator
	Registrar  *hotkey.Registrar
	Engine     *engine.Engine
	Overlay    *overlay.Presenter
	Store      *store.FileStore
	Prefs      *prefs.Store
}

// Options overrides adapters, mainly for tests.
type Options struct {
	Register hotkey.RegisterFunc
}

// Build wires all backend dependencies for the current runtime.
func Build(host Host, opts Options) (*Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := NewLogger(cfg.LogLevel)

	prefStore, err := prefs.Open(prefs.DefaultPath(cfg.DataDir), log.With().Str("component", "prefs").Logger())
	if err != nil {
		return nil, err
	}

	providerOpts := providers.Options{
		OpenRouterBaseURL:  cfg.Providers.OpenRouterBaseURL,
		SiliconFlowBaseURL: cfg.Providers.SiliconFlowBaseURL,
		Timeout:            cfg.Providers.RequestTimeout,
	}
	fileStore := store.Open(cfg.DataDir, providerOpts, log.With().Str("component", "store").Logger())

	// The registrar reads the record mode from settings, which are built on top of the engine.
	var syncer *settings.Synchronizer
	registrar := hotkey.NewRegistrar(hotkey.Options{
		Register: opts.Register,
		Emit: func(event domain.ToggleEvent) {
			host.Emit(domain.EventToggleRecording, event)
		},
		Mode: func() domain.RecordMode {
			return syncer.RecordMode()
		},
		Focused: host.WindowFocused,
	}, log.With().Str("component", "hotkey").Logger())

	recorder := audio.NewRecorder(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		audio.CaptureConfig{
			SampleRate:  cfg.Audio.SampleRate,
			Channels:    cfg.Audio.Channels,
			InputFormat: cfg.Audio.InputFormat,
			InputDevice: cfg.Audio.InputDevice,
		},
		os.TempDir(),
		log.With().Str("component", "audio").Logger(),
	)

	dict, err := vocabulary.Load(vocabulary.Path(cfg.DataDir))
	if err != nil {
		log.Warn().Err(err).Msg("vocabulary disabled")
		dict = &vocabulary.Dictionary{}
	}

	eng := engine.New(engine.Deps{
		Capture:       recorder,
		Config:        fileStore,
		Providers:     providerOpts,
		Vocabulary:    dict,
		Delivery:      keyboard.New(log.With().Str("component", "keyboard").Logger()),
		Accessibility: accessibility.New(log.With().Str("component", "accessibility").Logger()),
		Shortcuts:     registrar,
		Emitter:       host,
	}, log.With().Str("component", "engine").Logger())
	syncer = settings.NewSynchronizer(eng, prefStore, log.With().Str("component", "settings").Logger())

	coordinator := shortcut.NewCoordinator(registrar, prefStore, host, log.With().Str("component", "shortcut").Logger(), shortcut.Config{
		Default:       cfg.Shortcut.Default,
		ReadyAttempts: cfg.Shortcut.ReadyAttempts,
		ReadyDelay:    cfg.Shortcut.ReadyDelay,
		Validate: func(binding string) error {
			_, err := hotkey.Parse(binding)
			return err
		},
	})

	controller := usecase.NewSessionController(
		eng,
		syncer,
		coordinator,
		host,
		log.With().Str("component", "session").Logger(),
		usecase.Config{
			ToggleDebounce:    cfg.Session.ToggleDebounce,
			HoldThreshold:     cfg.Session.HoldThreshold,
			LevelPollInterval: cfg.Session.LevelPollInterval,
			OverlayTimeout:    cfg.Session.OverlayTimeout,
			NoticeDuration:    cfg.Session.NoticeDuration,
			HistoryLimit:      cfg.Session.HistoryLimit,
		},
	)

	return &Services{
		Config:     cfg,
		Log:        log,
		Controller: controller,
		Settings:   syncer,
		Shortcuts:  coordinator,
		Registrar:  registrar,
		Engine:     eng,
		Overlay:    overlay.NewPresenter(),
		Store:      fileStore,
		Prefs:      prefStore,
	}, nil
}

// Start runs once the host event loop is up: it loads settings, restores the
// shortcut and watches config.json. onReload receives the form after an
// external edit of the config file.
func (s *Services) Start(ctx context.Context, onReload func(settings.Form)) error {
	if err := s.Settings.Load(ctx); err != nil {
		s.Log.Warn().Err(err).Msg("initial settings load failed")
	}

	s.Registrar.MarkReady()
	go s.Shortcuts.Init(ctx)

	return s.Store.Watch(ctx, func(domain.SttConfig) {
		if err := s.Settings.Load(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("settings reload failed")
			return
		}
		if onReload != nil {
			onReload(s.Settings.Form())
		}
	})
}

// Close releases the shortcut, background workers and the preference database.
func (s *Services) Close() {
	s.Controller.Close()
	s.Registrar.Close()
	if err := s.Prefs.Close(); err != nil {
		s.Log.Warn().Err(err).Msg("close preferences")
	}
}

// NewLogger builds the root logger at level, falling back to info.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
