package model

import (
	"time"
)

type DecisionOutcome string

const (
	DecisionApproved DecisionOutcome = "approved"
	DecisionRejected DecisionOutcome = "rejected"
)

// VerificationDecision is an append-only audit entry for an admin decision.
// Rows are created inside the decision transaction and never updated or
// deleted afterwards.
type VerificationDecision struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SubmissionID uint            `gorm:"index;not null" json:"submission_id"`
	Submission   KYCSubmission   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	AdminID      uint            `gorm:"not null" json:"admin_id"`
	Outcome      DecisionOutcome `gorm:"type:varchar(20);not null" json:"outcome"`
	Note         string          `gorm:"type:text" json:"note,omitempty"`
}

func (VerificationDecision) TableName() string {
	return "verification_decisions"
}
