//go:build !darwin

package accessibility

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonDarwinIsAlwaysTrusted(t *testing.T) {
	t.Parallel()

	svc := New(zerolog.Nop())
	ok, err := svc.CheckAccessibilityPermissions(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.RequestAccessibilityPermissions(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, svc.OpenAccessibilitySettings(context.Background()))
}
