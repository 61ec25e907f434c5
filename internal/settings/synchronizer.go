package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"aitotype/internal/domain"
	"aitotype/internal/ports"
)

// Form is the live, user-editable settings state.
type Form struct {
	Provider    domain.Provider   `json:"provider"`
	APIKey      string            `json:"apiKey"`
	Model       string            `json:"model"`
	AutoWrite   bool              `json:"autoWrite"`
	RecordMode  domain.RecordMode `json:"recordMode"`
	Enhancement EnhancementForm   `json:"enhancement"`
}

// EnhancementForm is the editable enhancement sub-form.
type EnhancementForm struct {
	Enabled  bool            `json:"enabled"`
	Provider domain.Provider `json:"provider"`
	APIKey   string          `json:"apiKey"`
	Model    string          `json:"model"`
	Prompt   string          `json:"prompt"`
}

// Synchronizer merges the form, cached credentials and the backend store into one
// canonical configuration and commits it before sessions.
type Synchronizer struct {
	store ports.ConfigStore
	prefs ports.Preferences
	log   zerolog.Logger

	mu          sync.Mutex
	form        Form
	keys        map[domain.Provider]string
	enhanceKeys map[domain.Provider]string
	snapshot    domain.SttConfig
	synced      bool
}

func NewSynchronizer(store ports.ConfigStore, prefs ports.Preferences, log zerolog.Logger) *Synchronizer {
	s := &Synchronizer{
		store:       store,
		prefs:       prefs,
		log:         log,
		keys:        make(map[domain.Provider]string, len(domain.Providers)),
		enhanceKeys: make(map[domain.Provider]string, len(domain.Providers)),
	}
	s.loadCachedCredentialsLocked()

	mode := domain.RecordModeToggle
	if value, ok := prefs.Get(PrefRecordMode); ok {
		mode = domain.NormalizeRecordMode(value)
	}
	s.form = Form{
		Provider:   domain.ProviderOpenRouter,
		APIKey:     s.keys[domain.ProviderOpenRouter],
		Model:      DefaultOpenRouterModel,
		RecordMode: mode,
		Enhancement: EnhancementForm{
			Provider: domain.ProviderOpenRouter,
			APIKey:   s.enhanceKeys[domain.ProviderOpenRouter],
			Model:    DefaultOpenRouterEnhanceModel,
			Prompt:   DefaultEnhancePrompt,
		},
	}
	return s
}

// Load reads the backend configuration into the form. The backend's embedded
// credential only seeds a provider cache that is still empty.
func (s *Synchronizer) Load(ctx context.Context) error {
	cfg, err := s.store.GetSttConfig(ctx)
	if err != nil {
		return fmt.Errorf("load stt config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.Provider = domain.NormalizeProvider(string(cfg.Provider))
	cfg.Enhancement.Provider = domain.NormalizeProvider(string(cfg.Enhancement.Provider))
	s.loadCachedCredentialsLocked()

	if key := strings.TrimSpace(cfg.APIKey); key != "" && s.keys[cfg.Provider] == "" {
		s.keys[cfg.Provider] = key
		s.persistCredential(CredentialKey(cfg.Provider), key)
	}
	if key := strings.TrimSpace(cfg.Enhancement.APIKey); key != "" && s.enhanceKeys[cfg.Enhancement.Provider] == "" {
		s.enhanceKeys[cfg.Enhancement.Provider] = key
		s.persistCredential(EnhanceCredentialKey(cfg.Enhancement.Provider), key)
	}

	// The local preference owns the record mode; the backend value only seeds it.
	mode := s.form.RecordMode
	if value, ok := s.prefs.Get(PrefRecordMode); ok {
		mode = domain.NormalizeRecordMode(value)
	} else if cfg.RecordMode != "" {
		mode = domain.NormalizeRecordMode(string(cfg.RecordMode))
		s.persistPref(PrefRecordMode, string(mode))
	}
	cfg.RecordMode = mode

	s.snapshot = cfg
	s.synced = true
	s.form = Form{
		Provider:   cfg.Provider,
		APIKey:     s.keys[cfg.Provider],
		Model:      firstNonEmpty(cfg.Model, DefaultModel(cfg.Provider)),
		AutoWrite:  cfg.AutoWrite,
		RecordMode: mode,
		Enhancement: EnhancementForm{
			Enabled:  cfg.Enhancement.Enabled,
			Provider: cfg.Enhancement.Provider,
			APIKey:   s.enhanceKeys[cfg.Enhancement.Provider],
			Model:    firstNonEmpty(cfg.Enhancement.Model, DefaultEnhanceModel(cfg.Enhancement.Provider)),
			Prompt:   firstNonEmpty(cfg.Enhancement.Prompt, DefaultEnhancePrompt),
		},
	}
	return nil
}

// BuildConfig returns a fully populated configuration from the current form.
func (s *Synchronizer) BuildConfig() domain.SttConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked()
	s.flushEnhanceLocked()

	provider := domain.NormalizeProvider(string(s.form.Provider))
	enhanceProvider := domain.NormalizeProvider(string(s.form.Enhancement.Provider))

	return domain.SttConfig{
		Provider:   provider,
		Model:      firstNonEmpty(s.form.Model, DefaultModel(provider)),
		APIKey:     s.keys[provider],
		BaseURL:    "",
		AutoWrite:  s.form.AutoWrite,
		RecordMode: domain.NormalizeRecordMode(string(s.form.RecordMode)),
		Enhancement: domain.EnhancementConfig{
			Enabled:  s.form.Enhancement.Enabled,
			Provider: enhanceProvider,
			Model:    firstNonEmpty(s.form.Enhancement.Model, DefaultEnhanceModel(enhanceProvider)),
			Prompt:   firstNonEmpty(s.form.Enhancement.Prompt, DefaultEnhancePrompt),
			APIKey:   s.enhanceKeys[enhanceProvider],
		},
	}
}

// Commit sends cfg to the backend store. The store's error is returned as is
// (wrapped) so the caller can surface it.
func (s *Synchronizer) Commit(ctx context.Context, cfg domain.SttConfig) error {
	if err := s.store.SaveSttConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save stt config: %w", err)
	}

	s.mu.Lock()
	s.snapshot = cfg
	s.synced = true
	s.mu.Unlock()
	return nil
}

// SyncBeforeSession builds and commits the configuration. It must finish before
// the backend is asked to record.
func (s *Synchronizer) SyncBeforeSession(ctx context.Context) (domain.SttConfig, error) {
	cfg := s.BuildConfig()
	if err := s.Commit(ctx, cfg); err != nil {
		return domain.SttConfig{}, err
	}
	s.log.Debug().
		Str("provider", string(cfg.Provider)).
		Str("model", cfg.Model).
		Bool("enhance", cfg.Enhancement.Enabled).
		Msg("config synchronized")
	return cfg, nil
}

// Save commits the form and reloads the canonical configuration from the store.
func (s *Synchronizer) Save(ctx context.Context) error {
	if _, err := s.SyncBeforeSession(ctx); err != nil {
		return err
	}
	return s.Load(ctx)
}

// SelectProvider switches the transcription provider.
func (s *Synchronizer) SelectProvider(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushLocked()
	next := domain.NormalizeProvider(provider)
	model := strings.TrimSpace(s.form.Model)

	s.form.Provider = next
	s.form.APIKey = s.keys[next]
	if model == "" || isDefaultModel(model) {
		s.form.Model = DefaultModel(next)
	}
}

// SelectEnhancementProvider switches the enhancement provider.
func (s *Synchronizer) SelectEnhancementProvider(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flushEnhanceLocked()
	next := domain.NormalizeProvider(provider)
	model := strings.TrimSpace(s.form.Enhancement.Model)

	s.form.Enhancement.Provider = next
	s.form.Enhancement.APIKey = s.enhanceKeys[next]
	if model == "" || isDefaultEnhanceModel(model) {
		s.form.Enhancement.Model = DefaultEnhanceModel(next)
	}
}

// SetAPIKey updates the displayed transcription credential.
func (s *Synchronizer) SetAPIKey(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.APIKey = value
	s.keys[domain.NormalizeProvider(string(s.form.Provider))] = value
}

// SetEnhancementAPIKey updates the displayed enhancement credential.
func (s *Synchronizer) SetEnhancementAPIKey(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Enhancement.APIKey = value
	s.enhanceKeys[domain.NormalizeProvider(string(s.form.Enhancement.Provider))] = value
}

func (s *Synchronizer) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Model = strings.TrimSpace(model)
}

func (s *Synchronizer) SetAutoWrite(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.AutoWrite = enabled
}

// SetRecordMode updates and persists the record mode.
func (s *Synchronizer) SetRecordMode(mode string) {
	normalized := domain.NormalizeRecordMode(mode)

	s.mu.Lock()
	s.form.RecordMode = normalized
	s.mu.Unlock()

	s.persistPref(PrefRecordMode, string(normalized))
}

// SetEnhancement updates the non-credential enhancement fields.
func (s *Synchronizer) SetEnhancement(enabled bool, model string, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Enhancement.Enabled = enabled
	s.form.Enhancement.Model = strings.TrimSpace(model)
	s.form.Enhancement.Prompt = strings.TrimSpace(prompt)
}

// Form returns a copy of the live form.
func (s *Synchronizer) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// lastSynced returns the last synchronized configuration.
func (s *Synchronizer) lastSynced() (domain.SttConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.synced
}

// AutoWriteEnabled merges the synchronized flag with the live toggle.
func (s *Synchronizer) AutoWriteEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.synced && s.snapshot.AutoWrite) || s.form.AutoWrite
}

// RecordMode returns the record mode currently in effect.
func (s *Synchronizer) RecordMode() domain.RecordMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NormalizeRecordMode(string(s.form.RecordMode))
}

// AutoCopy reports the persisted auto-copy preference, enabled by default.
func (s *Synchronizer) AutoCopy() bool {
	value, ok := s.prefs.Get(PrefAutoCopy)
	if !ok {
		return true
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return true
	}
	return enabled
}

func (s *Synchronizer) SetAutoCopy(enabled bool) {
	s.persistPref(PrefAutoCopy, strconv.FormatBool(enabled))
}

func (s *Synchronizer) flushLocked() {
	provider := domain.NormalizeProvider(string(s.form.Provider))
	s.keys[provider] = s.form.APIKey
	s.persistCredential(CredentialKey(provider), s.form.APIKey)
}

func (s *Synchronizer) flushEnhanceLocked() {
	provider := domain.NormalizeProvider(string(s.form.Enhancement.Provider))
	s.enhanceKeys[provider] = s.form.Enhancement.APIKey
	s.persistCredential(EnhanceCredentialKey(provider), s.form.Enhancement.APIKey)
}

func (s *Synchronizer) loadCachedCredentialsLocked() {
	for _, provider := range domain.Providers {
		if value, ok := s.prefs.Get(CredentialKey(provider)); ok && s.keys[provider] == "" {
			s.keys[provider] = value
		}
		if value, ok := s.prefs.Get(EnhanceCredentialKey(provider)); ok && s.enhanceKeys[provider] == "" {
			s.enhanceKeys[provider] = value
		}
	}
}

func (s *Synchronizer) persistCredential(key string, value string) {
	var err error
	if value == "" {
		err = s.prefs.Delete(key)
	} else {
		err = s.prefs.Set(key, value)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to persist credential")
	}
}

func (s *Synchronizer) persistPref(key string, value string) {
	if err := s.prefs.Set(key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to persist preference")
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
