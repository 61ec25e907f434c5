package overlay

import (
	"sync"

	"aitotype/internal/domain"
)

// View is what the overlay surface draws.
type View struct {
	Status       domain.OverlayStatus `json:"status"`
	Label        string               `json:"label"`
	Transcribing bool                 `json:"transcribing"`
}

// Presenter mirrors the last overlay-status event. It has no state machine of
// its own; anything other than "transcribing" is shown as recording.
type Presenter struct {
	mu     sync.Mutex
	status domain.OverlayStatus
}

func NewPresenter() *Presenter {
	return &Presenter{status: domain.OverlayRecording}
}

// Apply records the latest status and returns the resulting view.
func (p *Presenter) Apply(status string) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = Parse(status)
	return render(p.status)
}

// Render returns the view for the last applied status.
func (p *Presenter) Render() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return render(p.status)
}

// Parse maps a raw status to an overlay status, defaulting to recording.
func Parse(status string) domain.OverlayStatus {
	if domain.OverlayStatus(status) == domain.OverlayTranscribing {
		return domain.OverlayTranscribing
	}
	return domain.OverlayRecording
}

func render(status domain.OverlayStatus) View {
	if status == domain.OverlayTranscribing {
		return View{Status: status, Label: "Transcribing", Transcribing: true}
	}
	return View{Status: domain.OverlayRecording, Label: "Recording"}
}
