package usecase

import "aitotype/internal/domain"

// View is the presentation projection of a SessionState.
type View struct {
	Status      domain.SessionStatus `json:"status"`
	Pill        string               `json:"pill"`
	Instruction string               `json:"instruction"`
	Active      bool                 `json:"active"`
	Processing  bool                 `json:"processing"`
	ShowResult  bool                 `json:"showResult"`
	Result      string               `json:"result,omitempty"`
	Notice      string               `json:"notice,omitempty"`
	CanCopy     bool                 `json:"canCopy"`
}

// Render projects state onto a View. It has no side effects.
func Render(state SessionState) View {
	view := View{
		Status: state.Status,
		Notice: state.Notice,
	}

	switch state.Status {
	case domain.StatusRecording:
		view.Pill = "Recording"
		view.Instruction = "Listening..."
		view.Active = true
	case domain.StatusTranscribing:
		view.Pill = "Processing"
		view.Instruction = "Transcribing..."
		view.Active = true
		view.Processing = true
	case domain.StatusSuccess:
		view.Pill = "Success"
		view.Instruction = "Complete"
		view.ShowResult = true
		view.Result = state.LastResultText
	case domain.StatusError:
		view.Pill = "Error"
		view.Instruction = orDefault(state.Message, "Failed")
	default:
		view.Status = domain.StatusIdle
		view.Pill = "Ready"
		view.Instruction = orDefault(state.Message, "Tap orb to capture")
	}

	view.CanCopy = state.LastResultText != "" && !view.Active
	return view
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
