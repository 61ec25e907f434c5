package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the desktop app.
type Config struct {
	LogLevel string `env:"AITOTYPE_LOG_LEVEL" envDefault:"info"`
	DataDir  string `env:"AITOTYPE_DATA_DIR"`

	Audio     AudioConfig     `envPrefix:"AITOTYPE_AUDIO_"`
	Providers ProvidersConfig `envPrefix:"AITOTYPE_"`
	Session   SessionConfig   `envPrefix:"AITOTYPE_SESSION_"`
	Shortcut  ShortcutConfig  `envPrefix:"AITOTYPE_SHORTCUT_"`
}

type AudioConfig struct {
	RecorderCommand string `env:"FFMPEG_COMMAND" envDefault:"ffmpeg"`
	InputFormat     string `env:"INPUT_FORMAT"`
	InputDevice     string `env:"INPUT_DEVICE"`
	SampleRate      int    `env:"SAMPLE_RATE" envDefault:"16000"`
	Channels        int    `env:"CHANNELS" envDefault:"1"`
}

type ProvidersConfig struct {
	OpenRouterBaseURL  string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	SiliconFlowBaseURL string        `env:"SILICONFLOW_BASE_URL" envDefault:"https://api.siliconflow.cn/v1"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
}

type SessionConfig struct {
	ToggleDebounce    time.Duration `env:"TOGGLE_DEBOUNCE" envDefault:"450ms"`
	HoldThreshold     time.Duration `env:"HOLD_THRESHOLD" envDefault:"200ms"`
	LevelPollInterval time.Duration `env:"LEVEL_POLL_INTERVAL" envDefault:"80ms"`
	OverlayTimeout    time.Duration `env:"OVERLAY_TIMEOUT" envDefault:"800ms"`
	NoticeDuration    time.Duration `env:"NOTICE_DURATION" envDefault:"4200ms"`
	HistoryLimit      int           `env:"HISTORY_LIMIT" envDefault:"20"`
}

type ShortcutConfig struct {
	Default       string        `env:"DEFAULT"`
	ReadyAttempts int           `env:"READY_ATTEMPTS" envDefault:"30"`
	ReadyDelay    time.Duration `env:"READY_DELAY" envDefault:"100ms"`
}

// Load resolves configuration from an optional .env file, environment variables and defaults.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("AITOTYPE_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, errors.New("could not determine config directory")
		}
		cfg.DataDir = filepath.Join(base, "aitotype")
	}
	if cfg.Audio.InputFormat == "" {
		cfg.Audio.InputFormat = defaultInputFormat()
	}
	if cfg.Audio.InputDevice == "" {
		cfg.Audio.InputDevice = defaultInputDevice()
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.HistoryLimit <= 0 {
		cfg.Session.HistoryLimit = 20
	}
	if cfg.Shortcut.ReadyAttempts <= 0 {
		cfg.Shortcut.ReadyAttempts = 30
	}
	if strings.TrimSpace(cfg.Shortcut.Default) == "" {
		cfg.Shortcut.Default = DefaultShortcut()
	}
	cfg.Providers.OpenRouterBaseURL = strings.TrimRight(cfg.Providers.OpenRouterBaseURL, "/")
	cfg.Providers.SiliconFlowBaseURL = strings.TrimRight(cfg.Providers.SiliconFlowBaseURL, "/")

	return cfg, nil
}

// DefaultShortcut returns the platform's out-of-the-box binding.
func DefaultShortcut() string {
	if runtime.GOOS == "windows" {
		return "Control+Shift+Space"
	}
	return "Alt+Space"
}

func defaultInputFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "pulse"
	}
}

func defaultInputDevice() string {
	switch runtime.GOOS {
	case "darwin":
		return ":0"
	case "windows":
		return "audio=default"
	default:
		return "default"
	}
}
