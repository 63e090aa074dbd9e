package wizard

import (
	"errors"
)

// Step is one screen of the three-step submission flow.
type Step int

const (
	StepBusinessDetails Step = iota + 1
	StepDocuments
	StepReviewSubmit
)

func (s Step) String() string {
	switch s {
	case StepBusinessDetails:
		return "business_details"
	case StepDocuments:
		return "documents"
	case StepReviewSubmit:
		return "review_submit"
	default:
		return "unknown"
	}
}

var (
	ErrPANRequired        = errors.New("PAN number is required before continuing")
	ErrNoDocumentAttached = errors.New("attach at least one document before continuing")
	ErrAtLastStep         = errors.New("already at the final step")
)

// Snapshot is the minimal view of submission state the guards need. The
// server remains the source of truth; these checks only keep obviously
// incomplete data from being sent at all.
type Snapshot struct {
	PANNumber         string
	DocumentsAttached int
}

// Wizard is the guarded three-step submission flow. Forward navigation is
// gated by the current step's validator; back navigation is unrestricted.
type Wizard struct {
	step Step
	snap Snapshot
}

func New() *Wizard {
	return &Wizard{step: StepBusinessDetails}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	return w.step
}

// SetSnapshot updates the state the guards evaluate against.
func (w *Wizard) SetSnapshot(snap Snapshot) {
	w.snap = snap
}

// Next advances to the following step if the current step's guard passes.
func (w *Wizard) Next() error {
	switch w.step {
	case StepBusinessDetails:
		if w.snap.PANNumber == "" {
			return ErrPANRequired
		}
		w.step = StepDocuments
	case StepDocuments:
		if w.snap.DocumentsAttached == 0 {
			return ErrNoDocumentAttached
		}
		w.step = StepReviewSubmit
	case StepReviewSubmit:
		return ErrAtLastStep
	}
	return nil
}

// Back moves to the previous step. Moving back from the first step is a no-op.
func (w *Wizard) Back() {
	if w.step > StepBusinessDetails {
		w.step--
	}
}

// Reset returns the wizard to the first step, as after a successful submit.
func (w *Wizard) Reset() {
	w.step = StepBusinessDetails
	w.snap = Snapshot{}
}

// ResumeStep derives the furthest step a seller can resume at from persisted
// state, applying the same guards as forward navigation.
func ResumeStep(snap Snapshot) Step {
	w := New()
	w.SetSnapshot(snap)
	for w.Next() == nil {
	}
	return w.Step()
}
