package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
)

// MaxDocumentSizeBytes is the per-document upload cap (5 MB).
const MaxDocumentSizeBytes = 5 * 1024 * 1024

var (
	ErrUnknownSlot     = errors.New("unknown document slot")
	ErrInvalidFileType = errors.New("file type is not allowed")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrGSTNotDeclared  = errors.New("no GST number is declared on the submission")
)

// allowedContentTypes lists the accepted document formats: PDF, JPEG (and its
// JFIF variant), PNG.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/jfif":      true,
	"image/png":       true,
}

// documentSignatures are the leading bytes of the accepted formats. The
// declared content type is client-supplied; the payload must also look like
// one of the accepted formats.
var documentSignatures = [][]byte{
	[]byte("%PDF"),
	{0xFF, 0xD8, 0xFF},                                // JPEG / JFIF
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
}

func matchesDocumentSignature(data []byte) bool {
	for _, sig := range documentSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// SlotRule describes the upload requirement for one document slot.
type SlotRule struct {
	Slot         model.DocumentSlot `json:"slot"`
	Mandatory    bool               `json:"mandatory"`
	MaxSizeBytes int64              `json:"max_size_bytes"`
	AllowedTypes []string           `json:"allowed_types"`
}

// ClassifySlot returns the requirement rule for a slot on the given
// submission. The GST slot is mandatory only when the submission declares a
// GST number; that is read from the record at evaluation time, never assumed.
func ClassifySlot(slot model.DocumentSlot, submission *model.KYCSubmission) (SlotRule, error) {
	rule := SlotRule{
		Slot:         slot,
		MaxSizeBytes: MaxDocumentSizeBytes,
		AllowedTypes: []string{"application/pdf", "image/jpeg", "image/jfif", "image/png"},
	}

	switch slot {
	case model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof:
		rule.Mandatory = true
	case model.SlotGST:
		rule.Mandatory = submission != nil && submission.GSTDeclared()
	default:
		return SlotRule{}, ErrUnknownSlot
	}

	return rule, nil
}

// RequiredSlots returns the set of slots that must carry an attachment before
// the submission can enter review: the four unconditional slots, plus GST when
// a GST number is declared.
func RequiredSlots(submission *model.KYCSubmission) []model.DocumentSlot {
	required := make([]model.DocumentSlot, 0, len(model.AllSlots))
	for _, slot := range model.AllSlots {
		rule, err := ClassifySlot(slot, submission)
		if err != nil {
			continue
		}
		if rule.Mandatory {
			required = append(required, slot)
		}
	}
	return required
}

// ValidateDocument checks an upload against the slot's rule before any
// transfer is attempted. It fails with ErrInvalidFileType or ErrFileTooLarge.
func ValidateDocument(slot model.DocumentSlot, contentType string, sizeBytes int64, data []byte) error {
	if !model.IsValidSlot(string(slot)) {
		return ErrUnknownSlot
	}
	if !allowedContentTypes[contentType] {
		return fmt.Errorf("%w: %s is not accepted for the %s document (allowed: PDF, JPEG, JFIF, PNG)",
			ErrInvalidFileType, contentType, slot)
	}
	if sizeBytes > MaxDocumentSizeBytes {
		return fmt.Errorf("%w: the %s document is %d bytes, maximum is %d bytes",
			ErrFileTooLarge, slot, sizeBytes, int64(MaxDocumentSizeBytes))
	}
	if !matchesDocumentSignature(data) {
		return fmt.Errorf("%w: the %s document content does not match any accepted format (PDF, JPEG, JFIF, PNG)",
			ErrInvalidFileType, slot)
	}
	return nil
}
