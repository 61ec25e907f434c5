package accessibility

import (
	"context"

	"github.com/rs/zerolog"
)

// SettingsURL opens the Accessibility pane of macOS System Settings.
const SettingsURL = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"

// Service reports and requests the permission needed to inject the paste keystroke.
// Platforms without such a gate always report trusted.
type Service struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Service {
	return &Service{log: log}
}

func (s *Service) CheckAccessibilityPermissions(context.Context) (bool, error) {
	return trusted(), nil
}

// RequestAccessibilityPermissions shows the system prompt when the app is not yet trusted.
func (s *Service) RequestAccessibilityPermissions(context.Context) (bool, error) {
	ok := requestTrust()
	s.log.Info().Bool("trusted", ok).Msg("accessibility permission requested")
	return ok, nil
}

func (s *Service) OpenAccessibilitySettings(ctx context.Context) error {
	return openSettings(ctx)
}
