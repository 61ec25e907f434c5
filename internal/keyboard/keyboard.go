package keyboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long the clipboard is given before the paste keystroke.
const DefaultSettle = 100 * time.Millisecond

// Keyboard copies text to the system clipboard and pastes it into the focused app.
type Keyboard struct {
	log    zerolog.Logger
	settle time.Duration
	write  func(string) error
	stroke func(context.Context) error
}

func New(log zerolog.Logger) *Keyboard {
	p := newPaster()
	return &Keyboard{
		log:    log,
		settle: DefaultSettle,
		write:  clipboard.WriteAll,
		stroke: p.send,
	}
}

// CopyToClipboard replaces the clipboard contents with text.
func (k *Keyboard) CopyToClipboard(_ context.Context, text string) error {
	if err := k.write(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// PasteText copies text, then sends the platform paste shortcut. The clipboard
// keeps text afterwards.
func (k *Keyboard) PasteText(ctx context.Context, text string) error {
	if err := k.CopyToClipboard(ctx, text); err != nil {
		return err
	}

	timer := time.NewTimer(k.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if err := k.stroke(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("send paste keystroke: %w", err)
	}
	k.log.Debug().Int("chars", len([]rune(text))).Msg("pasted transcript")
	return nil
}
