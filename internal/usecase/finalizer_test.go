package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"aitotype/internal/domain"
)

func TestFinalizerCopiesAndPastes(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(&callLog{})
	events := &fakeEventSink{}
	finalizer := newTranscriptFinalizer(backend, events, zerolog.Nop())

	result := finalizer.Deliver(context.Background(), "hello", deliveryPolicy{autoCopy: true, paste: true})
	if !result.copied || !result.pasted || result.pasteErr != nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.reason() != domain.SessionReasonTranscriptPasted {
		t.Fatalf("expected pasted reason, got %s", result.reason())
	}
	if got := backend.snapshotPasted(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected pasted text: %v", got)
	}
}

func TestFinalizerCopyFailureIsReportedOnly(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(&callLog{})
	backend.copyErr = errors.New("clipboard locked")
	events := &fakeEventSink{}
	finalizer := newTranscriptFinalizer(backend, events, zerolog.Nop())

	result := finalizer.Deliver(context.Background(), "hello", deliveryPolicy{autoCopy: true})
	if result.copied || result.pasteErr != nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.reason() != domain.SessionReasonTranscriptDelivered {
		t.Fatalf("expected delivered reason, got %s", result.reason())
	}
	errs := events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodeClipboard {
		t.Fatalf("expected clipboard error event, got %+v", errs)
	}
}

func TestFinalizerPasteFailure(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(&callLog{})
	backend.pasteErr = errors.New("not trusted")
	events := &fakeEventSink{}
	finalizer := newTranscriptFinalizer(backend, events, zerolog.Nop())

	result := finalizer.Deliver(context.Background(), "hello", deliveryPolicy{autoCopy: true, paste: true})
	if !result.copied || result.pasteErr == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.reason() != domain.SessionReasonPasteFailed {
		t.Fatalf("expected paste failed reason, got %s", result.reason())
	}
	errs := events.snapshotErrors()
	if len(errs) != 1 || errs[0].code != domain.ErrorCodePaste {
		t.Fatalf("expected paste error event, got %+v", errs)
	}
}

func TestFinalizerSkipsEmptyText(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	backend := newFakeBackend(log)
	finalizer := newTranscriptFinalizer(backend, &fakeEventSink{}, zerolog.Nop())

	result := finalizer.Deliver(context.Background(), "", deliveryPolicy{autoCopy: true, paste: true})
	if result.copied || result.pasted {
		t.Fatalf("unexpected result: %+v", result)
	}
	if calls := log.snapshot(); len(calls) != 0 {
		t.Fatalf("expected no delivery calls, got %v", calls)
	}
	if result.reason() != domain.SessionReasonTranscriptDelivered {
		t.Fatalf("unexpected reason %s", result.reason())
	}
}
