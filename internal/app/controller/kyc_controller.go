package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/app/service"
	apperrors "github.com/nvaghela/dukaan-backend/internal/errors"
	"github.com/nvaghela/dukaan-backend/internal/middleware"
	"github.com/nvaghela/dukaan-backend/pkg/redis"
)

type KYCController struct {
	kycService    service.KYCService
	uploadService service.UploadService
	uploadTimeout time.Duration
}

func NewKYCController(kycService service.KYCService, uploadService service.UploadService, uploadTimeout time.Duration) *KYCController {
	return &KYCController{
		kycService:    kycService,
		uploadService: uploadService,
		uploadTimeout: uploadTimeout,
	}
}

type SaveDetailsRequest struct {
	CompanyName   string `json:"company_name" binding:"required"`
	State         string `json:"state" binding:"required"`
	City          string `json:"city" binding:"required"`
	PINCode       string `json:"pin_code" binding:"required,pincode"`
	MobileNumber  string `json:"mobile_number" binding:"required,inmobile"`
	PANNumber     string `json:"pan_number" binding:"required,pan"`
	AadhaarNumber string `json:"aadhaar_number" binding:"required,aadhaar"`
	GSTNumber     string `json:"gst_number" binding:"omitempty,gstin"`
}

// GetStatus returns the seller's verification status, missing slots, progress,
// and the wizard step to resume at
// GET /api/v1/kyc/status
func (ctrl *KYCController) GetStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	view, err := ctrl.kycService.GetStatus(userID)
	if err != nil {
		log.Error("Failed to fetch KYC status", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, view)
}

// SaveDetails creates or updates the seller's submission fields
// PUT /api/v1/kyc/details
func (ctrl *KYCController) SaveDetails(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req SaveDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid KYC details payload", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "One or more fields are invalid. Check PAN, Aadhaar, GSTIN, PIN code, and mobile number formats")
		return
	}

	submission, err := ctrl.kycService.SaveDetails(userID, service.SubmissionDetails{
		CompanyName:   req.CompanyName,
		State:         req.State,
		City:          req.City,
		PINCode:       req.PINCode,
		MobileNumber:  req.MobileNumber,
		PANNumber:     req.PANNumber,
		AadhaarNumber: req.AadhaarNumber,
		GSTNumber:     req.GSTNumber,
	})
	if err != nil {
		if errors.Is(err, service.ErrIdentityLocked) {
			apperrors.Conflict(c, apperrors.KYCIdentityLocked, "Identity fields cannot be changed on a verified submission. Contact support to reopen verification")
			return
		}
		log.Error("Failed to save KYC details", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submission")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Details saved successfully",
		"submission": submission,
	})
}

// IsVerified reports whether the seller is currently KYC-verified. Served
// from the redis projection when warm, otherwise from the submission row
// GET /api/v1/kyc/verified
func (ctrl *KYCController) IsVerified(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	if redis.GetClient() != nil {
		verified, found, err := redis.GetCachedVerified(c.Request.Context(), userID)
		if err != nil {
			log.Warn("Verified-flag cache lookup failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if found {
			c.JSON(http.StatusOK, gin.H{"verified": verified})
			return
		}
	}

	submission, err := ctrl.kycService.GetSubmissionByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			c.JSON(http.StatusOK, gin.H{"verified": false})
			return
		}
		log.Error("Failed to resolve verified flag", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": submission.IsVerified})
}

// GetDetails returns the seller's full submission
// GET /api/v1/kyc/details
func (ctrl *KYCController) GetDetails(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	submission, err := ctrl.kycService.GetSubmissionByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "You have not started a KYC submission yet")
			return
		}
		log.Error("Failed to fetch submission", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// UploadDocument attaches a document to a slot on the seller's submission
// POST /api/v1/kyc/documents/:slot
func (ctrl *KYCController) UploadDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	slot := model.DocumentSlot(c.Param("slot"))
	if !model.IsValidSlot(string(slot)) {
		apperrors.BadRequest(c, apperrors.KYCUnknownSlot, fmt.Sprintf("Unknown document slot %q. Valid slots: pan, aadhaar, bank, address_proof, gst", slot))
		return
	}

	submission, err := ctrl.kycService.GetSubmissionByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "Save your business details before uploading documents")
			return
		}
		log.Error("Failed to load submission for upload", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	file, err := readUploadedFile(c)
	if err != nil {
		log.Warn("Failed to read uploaded file", map[string]interface{}{
			"user_id": userID,
			"slot":    slot,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.UploadFailed, "Could not read the uploaded file. Attach it under the \"file\" form field")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctrl.uploadTimeout)
	defer cancel()

	doc, err := ctrl.uploadService.Upload(ctx, submission.ID, slot, *file, userID)
	if err != nil {
		respondUploadError(c, slot, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// DownloadDocument streams back the seller's own document
// GET /api/v1/kyc/documents/:slot
func (ctrl *KYCController) DownloadDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	slot := model.DocumentSlot(c.Param("slot"))

	submission, err := ctrl.kycService.GetSubmissionByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "You have not started a KYC submission yet")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	doc, data, err := ctrl.uploadService.Download(c.Request.Context(), submission.ID, slot)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSlot):
			apperrors.BadRequest(c, apperrors.KYCUnknownSlot, fmt.Sprintf("Unknown document slot %q", slot))
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.KYCDocumentNotFound, fmt.Sprintf("No document has been uploaded for the %s slot", slot))
		case errors.Is(err, service.ErrStorageUnavailable):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.StorageUnavailable, "Document storage is temporarily unavailable. Try again shortly")
		default:
			log.Error("Failed to download document", err, map[string]interface{}{
				"user_id": userID,
				"slot":    slot,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, data)
}

// RemoveDocument detaches a document from a slot before verification
// DELETE /api/v1/kyc/documents/:slot
func (ctrl *KYCController) RemoveDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	slot := model.DocumentSlot(c.Param("slot"))

	submission, err := ctrl.kycService.GetSubmissionByUserID(userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "You have not started a KYC submission yet")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	if err := ctrl.uploadService.Remove(c.Request.Context(), submission.ID, slot); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSlot):
			apperrors.BadRequest(c, apperrors.KYCUnknownSlot, fmt.Sprintf("Unknown document slot %q", slot))
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.KYCDocumentNotFound, fmt.Sprintf("No document has been uploaded for the %s slot", slot))
		case errors.Is(err, service.ErrDocumentLocked):
			apperrors.Conflict(c, apperrors.KYCIdentityLocked, "Documents cannot be removed from a verified submission")
		default:
			log.Error("Failed to remove document", err, map[string]interface{}{
				"user_id": userID,
				"slot":    slot,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("The %s document was removed", slot),
	})
}

// GetHistory returns the seller's decision history
// GET /api/v1/kyc/history
func (ctrl *KYCController) GetHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	decisions, err := ctrl.kycService.GetHistory(userID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "You have not started a KYC submission yet")
			return
		}
		log.Error("Failed to fetch decision history", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": decisions})
}

// readUploadedFile extracts the multipart "file" field into memory. Uploads
// are capped well below any sane multipart limit, so buffering is fine.
func readUploadedFile(c *gin.Context) (*service.UploadFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")

	return &service.UploadFile{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		SizeBytes:   fileHeader.Size,
		Data:        data,
	}, nil
}

// respondUploadError maps upload service errors to responses naming the slot.
func respondUploadError(c *gin.Context, slot model.DocumentSlot, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "The submission no longer exists")
	case errors.Is(err, service.ErrUnknownSlot):
		apperrors.BadRequest(c, apperrors.KYCUnknownSlot, fmt.Sprintf("Unknown document slot %q", slot))
	case errors.Is(err, service.ErrInvalidFileType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, err.Error())
	case errors.Is(err, service.ErrGSTNotDeclared):
		apperrors.BadRequest(c, apperrors.KYCUnknownSlot, "The GST slot only applies when a GST number is declared on the submission")
	case errors.Is(err, service.ErrSlotBusy):
		apperrors.Conflict(c, apperrors.UploadSlotBusy, fmt.Sprintf("Another upload for the %s slot is already in progress. Wait for it to finish", slot))
	case errors.Is(err, service.ErrUploadTimeout):
		apperrors.RespondWithError(c, http.StatusRequestTimeout, apperrors.UploadTimeout, "The upload timed out. Check your connection and try again")
	case errors.Is(err, service.ErrStorageUnavailable):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.StorageUnavailable, "Document storage is temporarily unavailable. Try again shortly")
	default:
		log.Error("Document upload failed", err, map[string]interface{}{
			"slot": slot,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "The upload could not be completed")
	}
}
