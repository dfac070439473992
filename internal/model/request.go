package model

import "fmt"

// Mode selects which calculation a Request asks for.
type Mode string

const (
	ModeInitial Mode = "initial"
	ModeTitrate Mode = "titrate"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInitial, ModeTitrate:
		return Mode(s), nil
	case "":
		return "", MissingField("mode")
	default:
		return "", &InvalidInputError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
	}
}

// Request is an explicitly tagged calculation request. Exactly one of
// Initial or Titration must be set, matching Mode.
type Request struct {
	Mode      Mode
	Initial   *InitialInput
	Titration *TitrationInput
}

func (r Request) Validate() error {
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	switch r.Mode {
	case ModeInitial:
		if r.Initial == nil {
			return MissingField("bg")
		}
		return r.Initial.Validate()
	default:
		if r.Titration == nil {
			return MissingField("current_bg")
		}
		return r.Titration.Validate()
	}
}

// Outcome holds the result for the mode that was requested.
type Outcome struct {
	Mode      Mode
	Dose      *DoseResult
	Titration *TitrationResult
}
