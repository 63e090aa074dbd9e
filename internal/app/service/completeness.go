package service

import (
	"math"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
)

// Evaluation is the canonical completeness result for a submission. It is
// derived strictly from the typed attachment rows, never from display strings.
type Evaluation struct {
	Missing         []model.DocumentSlot `json:"missing"`
	RequiredCount   int                  `json:"required_count"`
	ProgressPercent int                  `json:"progress_percent"`
}

// Complete reports whether every required slot has an attachment.
func (e Evaluation) Complete() bool {
	return len(e.Missing) == 0
}

// Evaluate computes the missing required slots and a progress score for a
// submission. Progress is 100 once verified, 90 when complete but awaiting the
// admin decision, otherwise proportional to attached required slots with a
// floor of 10 (the submission exists, so at least one field has been saved).
func Evaluate(submission *model.KYCSubmission) Evaluation {
	required := RequiredSlots(submission)

	missing := make([]model.DocumentSlot, 0, len(required))
	for _, slot := range required {
		if !submission.HasDocument(slot) {
			missing = append(missing, slot)
		}
	}

	eval := Evaluation{
		Missing:       missing,
		RequiredCount: len(required),
	}

	switch {
	case submission.IsVerified:
		eval.ProgressPercent = 100
	case len(missing) == 0:
		eval.ProgressPercent = 90
	default:
		attached := len(required) - len(missing)
		percent := int(math.Round(100 * float64(attached) / float64(len(required))))
		if percent < 10 {
			percent = 10
		}
		eval.ProgressPercent = percent
	}

	return eval
}

// nextStatusAfterSellerMutation derives the submission status after a field
// save or document change by the seller. A complete submission enters review;
// an incomplete one sits in documents_pending. A rejected submission re-enters
// the pipeline on the seller's next mutation. Verified submissions are not
// mutated through this path.
func nextStatusAfterSellerMutation(current model.SubmissionStatus, eval Evaluation) model.SubmissionStatus {
	if current == model.StatusVerified {
		return current
	}
	if eval.Complete() {
		return model.StatusUnderReview
	}
	return model.StatusDocumentsPending
}
