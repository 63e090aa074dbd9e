package model

import (
	"time"
)

// DocumentSlot is one fixed document category on a KYC submission.
type DocumentSlot string

const (
	SlotPAN          DocumentSlot = "pan"
	SlotAadhaar      DocumentSlot = "aadhaar"
	SlotBank         DocumentSlot = "bank"
	SlotAddressProof DocumentSlot = "address_proof"
	SlotGST          DocumentSlot = "gst"
)

// AllSlots lists every slot in canonical order. The GST slot is last because
// its mandatory status is conditional.
var AllSlots = []DocumentSlot{SlotPAN, SlotAadhaar, SlotBank, SlotAddressProof, SlotGST}

// IsValidSlot reports whether s names a known document slot.
func IsValidSlot(s string) bool {
	switch DocumentSlot(s) {
	case SlotPAN, SlotAadhaar, SlotBank, SlotAddressProof, SlotGST:
		return true
	}
	return false
}

// KYCDocument is one committed attachment for a slot. The composite unique
// index on (submission_id, slot) makes a re-upload a replace, never a second
// row. Row presence is the slot's has_attachment flag.
type KYCDocument struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubmissionID uint          `gorm:"uniqueIndex:idx_submission_slot;not null" json:"submission_id"`
	Submission   KYCSubmission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Slot         DocumentSlot  `gorm:"type:varchar(20);uniqueIndex:idx_submission_slot;not null" json:"slot"`

	StorageKey  string `gorm:"type:text;not null" json:"-"` // opaque blob reference
	FileName    string `gorm:"type:varchar(255)" json:"file_name"`
	ContentType string `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedBy  uint   `json:"uploaded_by"` // seller, or admin on upload-on-behalf
}

func (KYCDocument) TableName() string {
	return "kyc_documents"
}
