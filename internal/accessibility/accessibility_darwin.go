package accessibility

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>

static int axTrusted(void) {
	return AXIsProcessTrusted() ? 1 : 0;
}

static int axTrustedWithPrompt(void) {
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanTrue };
	CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	Boolean ok = AXIsProcessTrustedWithOptions(options);
	CFRelease(options);
	return ok ? 1 : 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"os/exec"
)

func trusted() bool {
	return C.axTrusted() == 1
}

func requestTrust() bool {
	return C.axTrustedWithPrompt() == 1
}

func openSettings(ctx context.Context) error {
	if err := exec.CommandContext(ctx, "open", SettingsURL).Run(); err != nil {
		return fmt.Errorf("open accessibility settings: %w", err)
	}
	return nil
}
