package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
)

func TestClassifySlot(t *testing.T) {
	withGST := &model.KYCSubmission{GSTNumber: "27AAPFU0939F1ZV"}
	withoutGST := &model.KYCSubmission{}

	tests := []struct {
		name          string
		slot          model.DocumentSlot
		submission    *model.KYCSubmission
		wantMandatory bool
		wantErr       error
	}{
		{"PAN is always mandatory", model.SlotPAN, withoutGST, true, nil},
		{"Aadhaar is always mandatory", model.SlotAadhaar, withoutGST, true, nil},
		{"Bank is always mandatory", model.SlotBank, withGST, true, nil},
		{"Address proof is always mandatory", model.SlotAddressProof, withGST, true, nil},
		{"GST optional without declared number", model.SlotGST, withoutGST, false, nil},
		{"GST mandatory with declared number", model.SlotGST, withGST, true, nil},
		{"GST optional with nil submission", model.SlotGST, nil, false, nil},
		{"Unknown slot", model.DocumentSlot("selfie"), withoutGST, false, ErrUnknownSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ClassifySlot(tt.slot, tt.submission)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.slot, rule.Slot)
			assert.Equal(t, tt.wantMandatory, rule.Mandatory)
			assert.Equal(t, int64(MaxDocumentSizeBytes), rule.MaxSizeBytes)
		})
	}
}

func TestRequiredSlots(t *testing.T) {
	t.Run("Without GST number", func(t *testing.T) {
		required := RequiredSlots(&model.KYCSubmission{})
		assert.Equal(t, []model.DocumentSlot{
			model.SlotPAN, model.SlotAadhaar, model.SlotBank, model.SlotAddressProof,
		}, required)
	})

	t.Run("With GST number", func(t *testing.T) {
		required := RequiredSlots(&model.KYCSubmission{GSTNumber: "27AAPFU0939F1ZV"})
		assert.Len(t, required, 5)
		assert.Contains(t, required, model.SlotGST)
	})
}

func TestValidateDocument(t *testing.T) {
	pdfData := []byte("%PDF-1.4 test document")
	jpegData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	pngData := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	gifData := []byte("GIF89a...")

	tests := []struct {
		name        string
		slot        model.DocumentSlot
		contentType string
		sizeBytes   int64
		data        []byte
		wantErr     error
	}{
		{"Valid PDF", model.SlotPAN, "application/pdf", 1024, pdfData, nil},
		{"Valid JPEG", model.SlotAadhaar, "image/jpeg", 1024, jpegData, nil},
		{"Valid JFIF", model.SlotBank, "image/jfif", 1024, jpegData, nil},
		{"Valid PNG", model.SlotAddressProof, "image/png", MaxDocumentSizeBytes, pngData, nil},
		{"Rejected GIF", model.SlotPAN, "image/gif", 1024, gifData, ErrInvalidFileType},
		{"Rejected plain text", model.SlotPAN, "text/plain", 1024, []byte("hello"), ErrInvalidFileType},
		{"Declared PDF with GIF payload", model.SlotPAN, "application/pdf", 1024, gifData, ErrInvalidFileType},
		{"Declared PNG with empty payload", model.SlotPAN, "image/png", 0, nil, ErrInvalidFileType},
		{"Oversized file", model.SlotPAN, "application/pdf", MaxDocumentSizeBytes + 1, pdfData, ErrFileTooLarge},
		{"Unknown slot", model.DocumentSlot("selfie"), "application/pdf", 1024, pdfData, ErrUnknownSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.slot, tt.contentType, tt.sizeBytes, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
