package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"aitotype/internal/audio"
	"aitotype/internal/domain"
	"aitotype/internal/ports"
	"aitotype/internal/providers"
)

// Capture is the microphone side of the engine.
type Capture interface {
	Start(ctx context.Context) error
	Stop() error
	Finish() (string, error)
	Level() float64
}

// ConfigFile is the durable transcription config.
type ConfigFile interface {
	Get() domain.SttConfig
	Save(cfg domain.SttConfig) error
}

// Enhancer rewrites a transcript.
type Enhancer interface {
	Enhance(ctx context.Context, cfg domain.EnhancementConfig, text string) (string, error)
}

// Corrector fixes known transcription mistakes.
type Corrector interface {
	Apply(text string) string
}

// Deps are the adapters an Engine composes.
type Deps struct {
	Capture        Capture
	Config         ConfigFile
	Providers      providers.Options
	NewTranscriber func(domain.SttConfig) providers.Transcriber
	Enhancer       Enhancer
	Vocabulary     Corrector
	Delivery       ports.Delivery
	Accessibility  ports.Accessibility
	Shortcuts      ports.ShortcutRegistrar
	Emitter        ports.Emitter
}

// Engine is the in-process implementation of the backend command boundary.
type Engine struct {
	ports.Delivery
	ports.Accessibility
	ports.ShortcutRegistrar

	capture        Capture
	config         ConfigFile
	opts           providers.Options
	newTranscriber func(domain.SttConfig) providers.Transcriber
	enhancer       Enhancer
	vocabulary     Corrector
	emitter        ports.Emitter
	log            zerolog.Logger
}

var _ ports.Backend = (*Engine)(nil)

func New(deps Deps, log zerolog.Logger) *Engine {
	if deps.NewTranscriber == nil {
		opts := deps.Providers
		deps.NewTranscriber = func(cfg domain.SttConfig) providers.Transcriber {
			return providers.NewTranscriber(cfg, opts)
		}
	}
	if deps.Enhancer == nil {
		deps.Enhancer = providers.NewEnhancer(deps.Providers)
	}
	return &Engine{
		Delivery:          deps.Delivery,
		Accessibility:     deps.Accessibility,
		ShortcutRegistrar: deps.Shortcuts,
		capture:           deps.Capture,
		config:            deps.Config,
		opts:              deps.Providers,
		newTranscriber:    deps.NewTranscriber,
		enhancer:          deps.Enhancer,
		vocabulary:        deps.Vocabulary,
		emitter:           deps.Emitter,
		log:               log,
	}
}

func (e *Engine) StartRecording(ctx context.Context) error {
	return e.capture.Start(ctx)
}

// StopRecording discards the capture. Stopping when idle is not an error.
func (e *Engine) StopRecording(context.Context) error {
	if err := e.capture.Stop(); err != nil && !errors.Is(err, audio.ErrNotRecording) {
		return err
	}
	return nil
}

// StopAndTranscribe ends the capture and returns its transcript, corrected by
// the vocabulary and enhanced when enabled. A failed enhancement falls back to the raw transcript and emits
// enhancement-fallback-event.
func (e *Engine) StopAndTranscribe(ctx context.Context) (string, error) {
	wavPath, err := e.capture.Finish()
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(wavPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.log.Warn().Err(err).Str("path", wavPath).Msg("remove recording")
		}
	}()

	cfg := e.config.Get()
	transcriber := e.newTranscriber(cfg)
	text, err := transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		return "", fmt.Errorf("%s transcription failed: %w", transcriber.Name(), err)
	}
	text = strings.TrimSpace(text)
	if e.vocabulary != nil {
		text = strings.TrimSpace(e.vocabulary.Apply(text))
	}
	e.log.Info().Str("provider", transcriber.Name()).Str("model", transcriber.Model()).Int("chars", len([]rune(text))).Msg("transcribed")

	if text == "" || !cfg.Enhancement.Enabled {
		return text, nil
	}

	enhanced, err := e.enhancer.Enhance(ctx, cfg.Enhancement, text)
	if err != nil {
		e.log.Warn().Err(err).Str("provider", string(cfg.Enhancement.Provider)).Msg("enhancement failed, using raw transcript")
		e.emit(domain.EventEnhancementFallback, domain.FallbackEvent{Reason: err.Error()})
		return text, nil
	}
	return enhanced, nil
}

// GetAudioLevel returns the capture level; the caller clamps it.
func (e *Engine) GetAudioLevel(context.Context) (float64, error) {
	return e.capture.Level(), nil
}

func (e *Engine) GetSttConfig(context.Context) (domain.SttConfig, error) {
	return e.config.Get(), nil
}

func (e *Engine) SaveSttConfig(_ context.Context, cfg domain.SttConfig) error {
	return e.config.Save(cfg)
}

func (e *Engine) TestConnection(ctx context.Context) (domain.ConnectionResult, error) {
	return providers.TestConnection(ctx, e.config.Get(), e.opts), nil
}

func (e *Engine) ShowOverlayStatus(_ context.Context, status domain.OverlayStatus) error {
	e.emit(domain.EventOverlayStatus, domain.OverlayStatusEvent{
		Status: strings.ToLower(strings.TrimSpace(string(status))),
	})
	e.emit(domain.EventOverlayVisibility, domain.OverlayVisibilityEvent{Visible: true})
	return nil
}

func (e *Engine) HideOverlay(context.Context) error {
	e.emit(domain.EventOverlayVisibility, domain.OverlayVisibilityEvent{Visible: false})
	return nil
}

func (e *Engine) emit(name string, payload any) {
	if e.emitter != nil {
		e.emitter.Emit(name, payload)
	}
}
