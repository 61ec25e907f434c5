//go:build !darwin

package accessibility

import "context"

func trusted() bool { return true }

func requestTrust() bool { return true }

func openSettings(context.Context) error { return nil }
