package model

import (
	"time"

	"gorm.io/gorm"
)

// SubmissionStatus is the verification lifecycle state of a submission.
// The empty state (no row for the seller) is reported as StatusNoSubmission
// by the status endpoint; it is never stored.
type SubmissionStatus string

const (
	StatusNoSubmission     SubmissionStatus = "no_submission"
	StatusDocumentsPending SubmissionStatus = "documents_pending"
	StatusUnderReview      SubmissionStatus = "under_review"
	StatusVerified         SubmissionStatus = "verified"
	StatusRejected         SubmissionStatus = "rejected"
)

// KYCSubmission holds a seller's business and identity details together with
// the review outcome. Exactly one live row exists per seller; resubmission
// updates the row in place.
type KYCSubmission struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	CompanyName   string `gorm:"type:varchar(200)" json:"company_name"`
	State         string `gorm:"type:varchar(100)" json:"state"`
	City          string `gorm:"type:varchar(100)" json:"city"`
	PINCode       string `gorm:"type:varchar(6)" json:"pin_code"`
	MobileNumber  string `gorm:"type:varchar(15)" json:"mobile_number"`
	PANNumber     string `gorm:"type:varchar(10);not null" json:"pan_number"`
	AadhaarNumber string `gorm:"type:varchar(12)" json:"aadhaar_number"`
	GSTNumber     string `gorm:"type:varchar(15)" json:"gst_number"` // optional; non-empty makes the GST slot mandatory

	Status     SubmissionStatus `gorm:"type:varchar(20);default:'documents_pending';index" json:"status"`
	IsVerified bool             `gorm:"default:false;not null" json:"is_verified"`
	VerifiedAt *time.Time       `json:"verified_at,omitempty"`
	VerifiedBy *uint            `json:"verified_by,omitempty"`

	// Version backs optimistic concurrency for admin decisions. Every mutating
	// write bumps it; approve/reject fail when it moved since the record was read.
	Version uint `gorm:"default:1;not null" json:"version"`

	Documents []KYCDocument `gorm:"foreignKey:SubmissionID" json:"documents,omitempty"`
}

func (KYCSubmission) TableName() string {
	return "kyc_submissions"
}

// HasDocument reports whether the given slot has a committed attachment.
func (s *KYCSubmission) HasDocument(slot DocumentSlot) bool {
	for _, doc := range s.Documents {
		if doc.Slot == slot {
			return true
		}
	}
	return false
}

// GSTDeclared reports whether the seller declared a GST number, which makes
// the GST document slot mandatory.
func (s *KYCSubmission) GSTDeclared() bool {
	return s.GSTNumber != ""
}
