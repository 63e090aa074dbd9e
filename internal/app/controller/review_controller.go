package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/app/service"
	apperrors "github.com/nvaghela/dukaan-backend/internal/errors"
	"github.com/nvaghela/dukaan-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
	uploadService service.UploadService
	uploadTimeout time.Duration
}

func NewReviewController(reviewService service.ReviewService, uploadService service.UploadService, uploadTimeout time.Duration) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
		uploadService: uploadService,
		uploadTimeout: uploadTimeout,
	}
}

type DecisionRequest struct {
	Version uint   `json:"version"`
	Note    string `json:"note"`
}

// ListSubmissions returns the review queue, optionally filtered by status
// GET /api/v1/admin/kyc/submissions?status=under_review
func (ctrl *ReviewController) ListSubmissions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := model.SubmissionStatus(c.Query("status"))
	submissions, err := ctrl.reviewService.ListSubmissions(status)
	if err != nil {
		if status != "" {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, fmt.Sprintf("Unknown status filter %q", status))
			return
		}
		log.Error("Failed to list submissions", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

// GetSubmission returns one submission with its documents
// GET /api/v1/admin/kyc/submissions/:id
func (ctrl *ReviewController) GetSubmission(c *gin.Context) {
	submissionID, ok := ctrl.parseSubmissionID(c)
	if !ok {
		return
	}

	submission, err := ctrl.reviewService.GetSubmission(submissionID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "Submission not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// Approve verifies a submission
// POST /api/v1/admin/kyc/submissions/:id/approve
func (ctrl *ReviewController) Approve(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	adminID, _ := middleware.GetUserID(c)

	submissionID, ok := ctrl.parseSubmissionID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid decision payload")
		return
	}

	submission, err := ctrl.reviewService.Approve(c.Request.Context(), submissionID, adminID, req.Version, req.Note)
	if err != nil {
		var incomplete *service.IncompleteSubmissionError
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "Submission not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			apperrors.Conflict(c, apperrors.KYCAlreadyVerified, "This submission is already verified")
		case errors.Is(err, service.ErrNotReviewable):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Only submissions under review can be approved")
		case errors.As(err, &incomplete):
			c.JSON(http.StatusConflict, gin.H{
				"error":   apperrors.KYCIncompleteSubmission,
				"message": "The submission is missing required documents and cannot be approved",
				"missing": incomplete.Missing,
			})
		case errors.Is(err, service.ErrConcurrentModification):
			apperrors.Conflict(c, apperrors.KYCConcurrentUpdate, "The submission changed while you were reviewing it. Reload and decide again")
		default:
			log.Error("Approval failed", err, map[string]interface{}{
				"submission_id": submissionID,
				"admin_id":      adminID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Submission approved",
		"submission": submission,
	})
}

// Reject records a rejection (or revokes a verified submission)
// POST /api/v1/admin/kyc/submissions/:id/reject
func (ctrl *ReviewController) Reject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	adminID, _ := middleware.GetUserID(c)

	submissionID, ok := ctrl.parseSubmissionID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid decision payload")
		return
	}

	submission, err := ctrl.reviewService.Reject(c.Request.Context(), submissionID, adminID, req.Version, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "Submission not found")
		case errors.Is(err, service.ErrNoteRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "A note explaining the rejection is required")
		case errors.Is(err, service.ErrNotRevocable):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Only submissions under review or verified can be rejected")
		case errors.Is(err, service.ErrConcurrentModification):
			apperrors.Conflict(c, apperrors.KYCConcurrentUpdate, "The submission changed while you were reviewing it. Reload and decide again")
		default:
			log.Error("Rejection failed", err, map[string]interface{}{
				"submission_id": submissionID,
				"admin_id":      adminID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Submission rejected",
		"submission": submission,
	})
}

// UploadDocument attaches a document on behalf of the seller
// POST /api/v1/admin/kyc/submissions/:id/documents/:slot
func (ctrl *ReviewController) UploadDocument(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	submissionID, ok := ctrl.parseSubmissionID(c)
	if !ok {
		return
	}

	slot := model.DocumentSlot(c.Param("slot"))
	if !model.IsValidSlot(string(slot)) {
		apperrors.BadRequest(c, apperrors.KYCUnknownSlot, fmt.Sprintf("Unknown document slot %q. Valid slots: pan, aadhaar, bank, address_proof, gst", slot))
		return
	}

	file, err := readUploadedFile(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.UploadFailed, "Could not read the uploaded file. Attach it under the \"file\" form field")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctrl.uploadTimeout)
	defer cancel()

	doc, err := ctrl.uploadService.Upload(ctx, submissionID, slot, *file, adminID)
	if err != nil {
		respondUploadError(c, slot, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

// DownloadDocument streams a seller's document for review
// GET /api/v1/admin/kyc/submissions/:id/documents/:slot
func (ctrl *ReviewController) DownloadDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	submissionID, ok := ctrl.parseSubmissionID(c)
	if !ok {
		return
	}

	slot := model.DocumentSlot(c.Param("slot"))
	doc, data, err := ctrl.uploadService.Download(c.Request.Context(), submissionID, slot)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSlot):
			apperrors.BadRequest(c, apperrors.KYCUnknownSlot, fmt.Sprintf("Unknown document slot %q", slot))
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.KYCDocumentNotFound, fmt.Sprintf("No document has been uploaded for the %s slot", slot))
		case errors.Is(err, service.ErrStorageUnavailable):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.StorageUnavailable, "Document storage is temporarily unavailable. Try again shortly")
		default:
			log.Error("Failed to download document for review", err, map[string]interface{}{
				"submission_id": submissionID,
				"slot":          slot,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, data)
}

// GetHistory returns a submission's full decision trail
// GET /api/v1/admin/kyc/submissions/:id/history
func (ctrl *ReviewController) GetHistory(c *gin.Context) {
	submissionID, ok := ctrl.parseSubmissionID(c)
	if !ok {
		return
	}

	decisions, err := ctrl.reviewService.GetHistory(submissionID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			apperrors.NotFound(c, apperrors.KYCSubmissionNotFound, "Submission not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": decisions})
}

func (ctrl *ReviewController) parseSubmissionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid submission ID")
		return 0, false
	}
	return uint(id), true
}
