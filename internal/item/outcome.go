package item

import "fmt"

// Outcome is the terminal state of a single item in one pass
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeCreated
	OutcomeSavedPrimary
	OutcomeSavedFallback
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCreated:
		return "created"
	case OutcomeSavedPrimary:
		return "saved_primary"
	case OutcomeSavedFallback:
		return "saved_fallback"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Saved reports whether the outcome wrote a file
func (o Outcome) Saved() bool {
	return o == OutcomeCreated || o == OutcomeSavedPrimary || o == OutcomeSavedFallback
}

// Summary counts the outcomes of one pass
type Summary struct {
	Processed int
	Created   int
	Skipped   int
	Failed    int

	// Created split by the strategy that produced the file (image passes only)
	Primary  int
	Fallback int
}

// Add records one outcome
func (s *Summary) Add(o Outcome) {
	s.Processed++
	switch o {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeCreated:
		s.Created++
	case OutcomeSavedPrimary:
		s.Created++
		s.Primary++
	case OutcomeSavedFallback:
		s.Created++
		s.Fallback++
	case OutcomeFailed:
		s.Failed++
	}
}
