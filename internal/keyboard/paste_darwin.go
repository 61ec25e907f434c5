package keyboard

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const pasteScript = `tell application "System Events" to keystroke "v" using command down`

type paster struct{}

func newPaster() *paster { return &paster{} }

// send drives Cmd+V through System Events, which needs Accessibility permission.
func (p *paster) send(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "osascript", "-e", pasteScript).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
