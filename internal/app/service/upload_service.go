package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/app/repository"
	"github.com/nvaghela/dukaan-backend/internal/storage"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

var (
	ErrSlotBusy           = errors.New("another upload for this slot is already in progress")
	ErrUploadTimeout      = errors.New("the upload timed out before completing")
	ErrStorageUnavailable = errors.New("document storage is temporarily unavailable")
	ErrDocumentNotFound   = errors.New("no document has been uploaded for this slot")
	ErrDocumentLocked     = errors.New("documents cannot be removed from a verified submission")
)

// UploadFile is an upload request after the transport layer has read it.
type UploadFile struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Data        []byte
}

type UploadService interface {
	// Upload validates, stores, and commits a document for a slot. At most
	// one upload per (submission, slot) may be in flight; the blob is written
	// before the attachment row so a crash between the two leaves the slot
	// absent, never present without durable storage behind it.
	Upload(ctx context.Context, submissionID uint, slot model.DocumentSlot, file UploadFile, uploadedBy uint) (*model.KYCDocument, error)
	Download(ctx context.Context, submissionID uint, slot model.DocumentSlot) (*model.KYCDocument, []byte, error)
	// Remove deletes a slot's attachment. Seller-facing; blocked once verified.
	Remove(ctx context.Context, submissionID uint, slot model.DocumentSlot) error
	// ReleaseStaleReservations drops reservations older than maxAge. Called by
	// the sweeper to recover slots abandoned mid-transfer.
	ReleaseStaleReservations(maxAge time.Duration) int
}

type uploadService struct {
	kycRepo  repository.KYCRepository
	storage  storage.BlobStorage
	notifier StatusNotifier

	// In-flight reservations per "submissionID:slot". Reservations are
	// advisory coordination only; they never touch stored state.
	mu           sync.Mutex
	reservations map[string]time.Time
}

func NewUploadService(kycRepo repository.KYCRepository, blobStorage storage.BlobStorage, notifier StatusNotifier) UploadService {
	return &uploadService{
		kycRepo:      kycRepo,
		storage:      blobStorage,
		notifier:     notifier,
		reservations: make(map[string]time.Time),
	}
}

func (s *uploadService) Upload(ctx context.Context, submissionID uint, slot model.DocumentSlot, file UploadFile, uploadedBy uint) (*model.KYCDocument, error) {
	logger.Info("Starting document upload", map[string]interface{}{
		"submission_id": submissionID,
		"slot":          slot,
		"file_name":     file.FileName,
		"size_bytes":    file.SizeBytes,
	})

	submission, err := s.kycRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	// Validation failures never reach storage.
	if err := ValidateDocument(slot, file.ContentType, file.SizeBytes, file.Data); err != nil {
		logger.Warn("Document failed validation", map[string]interface{}{
			"submission_id": submissionID,
			"slot":          slot,
			"content_type":  file.ContentType,
			"size_bytes":    file.SizeBytes,
			"error":         err.Error(),
		})
		return nil, err
	}
	if slot == model.SlotGST && !submission.GSTDeclared() {
		return nil, ErrGSTNotDeclared
	}

	if !s.reserve(submissionID, slot) {
		logger.Warn("Slot already has an upload in flight", map[string]interface{}{
			"submission_id": submissionID,
			"slot":          slot,
		})
		return nil, ErrSlotBusy
	}
	defer s.release(submissionID, slot)

	// The transfer runs without any submission lock so a slow upload cannot
	// stall a concurrent admin decision.
	key := fmt.Sprintf("kyc/%d/%s/%s%s", submissionID, slot, uuid.New().String(), filepath.Ext(file.FileName))
	if err := s.storage.Store(ctx, key, file.ContentType, file.Data); err != nil {
		return nil, s.classifyStorageError(ctx, err, submissionID, slot)
	}

	// Cancellation before the commit step is a no-op on stored state; the
	// orphan blob is cleaned up best-effort.
	if err := ctx.Err(); err != nil {
		s.discardBlob(key)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrUploadTimeout
		}
		return nil, err
	}

	// Keep the outgoing blob's key so it can be cleaned up after the replace.
	var previousKey string
	if existing, err := s.kycRepo.FindDocument(submissionID, slot); err == nil {
		previousKey = existing.StorageKey
	}

	doc := &model.KYCDocument{
		SubmissionID: submissionID,
		Slot:         slot,
		StorageKey:   key,
		FileName:     file.FileName,
		ContentType:  file.ContentType,
		SizeBytes:    file.SizeBytes,
		UploadedBy:   uploadedBy,
	}

	if err := s.kycRepo.UpsertDocument(doc); err != nil {
		s.discardBlob(key)
		return nil, err
	}

	if previousKey != "" && previousKey != key {
		s.discardBlob(previousKey)
	}

	s.reevaluate(submissionID)

	logger.Info("Document upload committed", map[string]interface{}{
		"submission_id": submissionID,
		"slot":          slot,
		"storage_key":   key,
	})

	return doc, nil
}

func (s *uploadService) Download(ctx context.Context, submissionID uint, slot model.DocumentSlot) (*model.KYCDocument, []byte, error) {
	if !model.IsValidSlot(string(slot)) {
		return nil, nil, ErrUnknownSlot
	}

	doc, err := s.kycRepo.FindDocument(submissionID, slot)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}

	data, err := s.storage.Fetch(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Error("Attachment row exists but blob is missing", err, map[string]interface{}{
				"submission_id": submissionID,
				"slot":          slot,
				"storage_key":   doc.StorageKey,
			})
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, ErrStorageUnavailable
	}

	return doc, data, nil
}

func (s *uploadService) Remove(ctx context.Context, submissionID uint, slot model.DocumentSlot) error {
	if !model.IsValidSlot(string(slot)) {
		return ErrUnknownSlot
	}

	submission, err := s.kycRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}
	if submission.IsVerified {
		return ErrDocumentLocked
	}

	doc, err := s.kycRepo.FindDocument(submissionID, slot)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.kycRepo.DeleteDocument(submissionID, slot); err != nil {
		return err
	}
	s.discardBlob(doc.StorageKey)

	s.reevaluate(submissionID)

	logger.Info("Document removed from slot", map[string]interface{}{
		"submission_id": submissionID,
		"slot":          slot,
	})
	return nil
}

func (s *uploadService) ReleaseStaleReservations(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	cutoff := time.Now().Add(-maxAge)
	for key, reservedAt := range s.reservations {
		if reservedAt.Before(cutoff) {
			delete(s.reservations, key)
			released++
		}
	}

	if released > 0 {
		logger.Warn("Released stale upload reservations", map[string]interface{}{
			"count":   released,
			"max_age": maxAge.String(),
		})
	}
	return released
}

// reevaluate recomputes completeness after a successful document mutation and
// advances or rolls back the submission status accordingly.
func (s *uploadService) reevaluate(submissionID uint) {
	submission, err := s.kycRepo.FindByID(submissionID)
	if err != nil {
		logger.Error("Failed to reload submission for re-evaluation", err, map[string]interface{}{
			"submission_id": submissionID,
		})
		return
	}

	eval := Evaluate(submission)
	next := nextStatusAfterSellerMutation(submission.Status, eval)

	// The version moves on every committed document mutation, not just on a
	// status transition. A decision made against the pre-mutation record must
	// fail its version check: the document set the admin reviewed is gone.
	previous := submission.Status
	submission.Status = next
	submission.Version++
	if err := s.kycRepo.Save(submission); err != nil {
		logger.Error("Failed to persist submission after re-evaluation", err, map[string]interface{}{
			"submission_id": submissionID,
		})
		return
	}

	if next == previous {
		return
	}

	logger.Info("Submission status changed after document mutation", map[string]interface{}{
		"submission_id": submissionID,
		"from":          previous,
		"to":            next,
		"missing_count": len(eval.Missing),
	})

	if s.notifier != nil {
		s.notifier.NotifyStatus(submission.UserID, next)
	}
}

func (s *uploadService) classifyStorageError(ctx context.Context, err error, submissionID uint, slot model.DocumentSlot) error {
	logger.Error("Failed to store document blob", err, map[string]interface{}{
		"submission_id": submissionID,
		"slot":          slot,
	})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrUploadTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return ErrStorageUnavailable
}

func (s *uploadService) discardBlob(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Warn("Failed to discard orphaned blob", map[string]interface{}{
			"storage_key": key,
			"error":       err.Error(),
		})
	}
}

func (s *uploadService) reserve(submissionID uint, slot model.DocumentSlot) bool {
	key := reservationKey(submissionID, slot)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, inFlight := s.reservations[key]; inFlight {
		return false
	}
	s.reservations[key] = time.Now()
	return true
}

func (s *uploadService) release(submissionID uint, slot model.DocumentSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reservations, reservationKey(submissionID, slot))
}

func reservationKey(submissionID uint, slot model.DocumentSlot) string {
	return fmt.Sprintf("%d:%s", submissionID, slot)
}
