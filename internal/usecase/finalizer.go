package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"aitotype/internal/domain"
	"aitotype/internal/ports"
)

// PasteFailedMessage is shown when paste injection fails after a successful transcription.
const PasteFailedMessage = "Paste failed. Check Accessibility permissions."

type deliveryPolicy struct {
	autoCopy bool
	paste    bool
}

type deliveryResult struct {
	copied   bool
	pasted   bool
	pasteErr error
}

func (r deliveryResult) reason() domain.SessionStateReason {
	switch {
	case r.pasteErr != nil:
		return domain.SessionReasonPasteFailed
	case r.pasted:
		return domain.SessionReasonTranscriptPasted
	case r.copied:
		return domain.SessionReasonTranscriptCopied
	default:
		return domain.SessionReasonTranscriptDelivered
	}
}

type transcriptFinalizer struct {
	delivery ports.Delivery
	events   ports.SessionEvents
	log      zerolog.Logger
}

func newTranscriptFinalizer(delivery ports.Delivery, events ports.SessionEvents, log zerolog.Logger) transcriptFinalizer {
	return transcriptFinalizer{delivery: delivery, events: events, log: log}
}

// Deliver copies and pastes text according to policy. A copy failure is
// reported but never fails the cycle; a paste failure is returned in the result.
func (f transcriptFinalizer) Deliver(ctx context.Context, text string, policy deliveryPolicy) deliveryResult {
	var result deliveryResult
	if text == "" {
		return result
	}

	if policy.autoCopy {
		if err := f.delivery.CopyToClipboard(ctx, text); err != nil {
			f.log.Warn().Err(err).Msg("clipboard copy failed")
			f.events.SessionError(domain.ErrorCodeClipboard, err.Error())
		} else {
			result.copied = true
		}
	}

	if policy.paste {
		if err := f.delivery.PasteText(ctx, text); err != nil {
			f.log.Warn().Err(err).Msg("paste failed")
			f.events.SessionError(domain.ErrorCodePaste, err.Error())
			result.pasteErr = err
		} else {
			result.pasted = true
		}
	}

	return result
}
