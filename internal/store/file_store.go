package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"aitotype/internal/domain"
	"aitotype/internal/providers"
	"aitotype/internal/settings"
)

const fileName = "config.json"

// FileStore keeps the canonical transcription config in memory and in config.json.
type FileStore struct {
	path string
	opts providers.Options
	log  zerolog.Logger

	mu  sync.RWMutex
	cfg domain.SttConfig
}

// Path returns the config file location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Open loads config.json from dataDir. A missing or unreadable file yields the
// defaults, with the provider's environment credential as the key.
func Open(dataDir string, opts providers.Options, log zerolog.Logger) *FileStore {
	s := &FileStore{path: Path(dataDir), opts: opts, log: log}

	cfg, err := readConfig(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("ignoring unreadable config file")
		}
		cfg = domain.SttConfig{Provider: domain.ProviderOpenRouter}
		cfg.APIKey = providers.ResolveAPIKey(cfg.Provider, "")
	} else {
		s.log.Info().Str("path", s.path).Msg("loaded config file")
	}
	s.cfg = Normalize(cfg, opts)
	return s
}

// Get returns the normalized config.
func (s *FileStore) Get() domain.SttConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Save normalizes cfg, makes it current and writes it to disk.
func (s *FileStore) Save(cfg domain.SttConfig) error {
	cfg = Normalize(cfg, s.opts)

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	if err := writeConfig(s.path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Watch reloads the config when config.json is edited outside the app, calling
// onChange with the new value. It returns when ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context, onChange func(domain.SttConfig)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	// Watch the directory so atomic replaces are seen.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if cfg, changed := s.reload(); changed && onChange != nil {
					onChange(cfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()
	return nil
}

func (s *FileStore) reload() (domain.SttConfig, bool) {
	cfg, err := readConfig(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Msg("config reload failed")
		}
		return domain.SttConfig{}, false
	}
	cfg = Normalize(cfg, s.opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if reflect.DeepEqual(cfg, s.cfg) {
		return cfg, false
	}
	s.cfg = cfg
	s.log.Info().Str("provider", string(cfg.Provider)).Str("model", cfg.Model).Msg("config reloaded from disk")
	return cfg, true
}

// Normalize trims every field and fills provider defaults for the endpoint and models.
func Normalize(cfg domain.SttConfig, opts providers.Options) domain.SttConfig {
	cfg.Provider = domain.NormalizeProvider(strings.TrimSpace(string(cfg.Provider)))
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL(cfg.Provider), "/")
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = settings.DefaultModel(cfg.Provider)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.RecordMode = domain.NormalizeRecordMode(strings.TrimSpace(string(cfg.RecordMode)))

	enh := &cfg.Enhancement
	enh.Provider = domain.NormalizeProvider(strings.TrimSpace(string(enh.Provider)))
	enh.Model = strings.TrimSpace(enh.Model)
	if enh.Model == "" {
		enh.Model = settings.DefaultEnhanceModel(enh.Provider)
	}
	enh.APIKey = strings.TrimSpace(enh.APIKey)
	if strings.TrimSpace(enh.Prompt) == "" {
		enh.Prompt = settings.DefaultEnhancePrompt
	}
	return cfg
}

func readConfig(path string) (domain.SttConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SttConfig{}, err
	}
	var cfg domain.SttConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.SttConfig{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func writeConfig(path string, cfg domain.SttConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
