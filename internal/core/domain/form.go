package domain

type Mode string

const (
	ModeFile Mode = "file"
	ModeText Mode = "text"
)

func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModeFile:
		return ModeFile, true
	case ModeText:
		return ModeText, true
	default:
		return "", false
	}
}

type FormState struct {
	Mode    Mode
	File    *Upload
	Text    string
	Loading bool
	Error   string
}

// NewFormState returns the empty form. The file tab is active first.
func NewFormState() FormState {
	return FormState{Mode: ModeFile}
}

// CanSubmit reports whether the submit action is enabled for the active mode.
func (s FormState) CanSubmit() bool {
	if s.Loading {
		return false
	}
	if s.Mode == ModeText {
		return TextLength(s.Text) >= MinTextLength
	}
	return s.File != nil
}

// Request builds the payload for the active mode only.
func (s FormState) Request() AnalysisRequest {
	if s.Mode == ModeFile {
		return AnalysisRequest{File: s.File}
	}
	return AnalysisRequest{Text: s.Text}
}
