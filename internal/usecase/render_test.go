package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"aitotype/internal/domain"
)

func TestRender(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		state SessionState
		want  View
	}{
		{
			name:  "zero value renders idle",
			state: SessionState{},
			want:  View{Status: domain.StatusIdle, Pill: "Ready", Instruction: "Tap orb to capture"},
		},
		{
			name:  "idle with message",
			state: SessionState{Status: domain.StatusIdle, Message: "No speech detected"},
			want:  View{Status: domain.StatusIdle, Pill: "Ready", Instruction: "No speech detected"},
		},
		{
			name:  "recording",
			state: SessionState{Status: domain.StatusRecording, LastResultText: "old"},
			want:  View{Status: domain.StatusRecording, Pill: "Recording", Instruction: "Listening...", Active: true},
		},
		{
			name:  "transcribing",
			state: SessionState{Status: domain.StatusTranscribing},
			want: View{
				Status: domain.StatusTranscribing, Pill: "Processing", Instruction: "Transcribing...",
				Active: true, Processing: true,
			},
		},
		{
			name:  "success",
			state: SessionState{Status: domain.StatusSuccess, LastResultText: "hello world", Notice: "n"},
			want: View{
				Status: domain.StatusSuccess, Pill: "Success", Instruction: "Complete",
				ShowResult: true, Result: "hello world", Notice: "n", CanCopy: true,
			},
		},
		{
			name:  "error",
			state: SessionState{Status: domain.StatusError, Message: PasteFailedMessage, LastResultText: "kept"},
			want:  View{Status: domain.StatusError, Pill: "Error", Instruction: PasteFailedMessage, CanCopy: true},
		},
		{
			name:  "error without message",
			state: SessionState{Status: domain.StatusError},
			want:  View{Status: domain.StatusError, Pill: "Error", Instruction: "Failed"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Render(tc.state); got != tc.want {
				t.Fatalf("unexpected view:\n got %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestTruncateReason(t *testing.T) {
	t.Parallel()

	if got := truncateReason("  short  ", 120); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	exact := strings.Repeat("a", 120)
	if got := truncateReason(exact, 120); got != exact {
		t.Fatalf("exact length must not be ellipsized")
	}
	wide := strings.Repeat("语", 130)
	got := truncateReason(wide, 120)
	if []rune(got)[120] != '…' || len([]rune(got)) != 121 {
		t.Fatalf("truncation must count runes: %q", got)
	}
	if fallbackNoticeText("") != fallbackNotice+"unknown error" {
		t.Fatalf("empty reason must be named")
	}
}

func TestBoundedCallTimesOut(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := boundedCall(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("bounded call blocked for %s", elapsed)
	}

	want := errors.New("hide failed")
	if err := boundedCall(context.Background(), time.Second, func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected call error, got %v", err)
	}
}
