package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/app/repository"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

var (
	ErrAlreadyVerified        = errors.New("submission is already verified")
	ErrNotReviewable          = errors.New("submission is not awaiting review")
	ErrNotRevocable           = errors.New("submission is not in a rejectable state")
	ErrNoteRequired           = errors.New("a rejection requires a note for the seller")
	ErrConcurrentModification = errors.New("submission changed while the decision was being made")
)

// IncompleteSubmissionError reports an approval attempt against a submission
// that is missing required documents. The slots are carried so the admin sees
// exactly what is absent.
type IncompleteSubmissionError struct {
	Missing []model.DocumentSlot
}

func (e *IncompleteSubmissionError) Error() string {
	names := make([]string, len(e.Missing))
	for i, slot := range e.Missing {
		names[i] = string(slot)
	}
	return fmt.Sprintf("submission is missing required documents: %s", strings.Join(names, ", "))
}

type ReviewService interface {
	// ListSubmissions returns submissions for the admin queue, optionally
	// filtered by status. An empty status returns everything.
	ListSubmissions(status model.SubmissionStatus) ([]model.KYCSubmission, error)
	GetSubmission(submissionID uint) (*model.KYCSubmission, error)
	GetHistory(submissionID uint) ([]model.VerificationDecision, error)

	// Approve marks an under-review submission verified. expectedVersion is
	// the version the admin reviewed (0 accepts the current one). The status
	// flip, the seller's kyc_verified projection, and the decision row commit
	// in one transaction; a concurrent change surfaces as
	// ErrConcurrentModification and nothing is applied.
	Approve(ctx context.Context, submissionID uint, adminID uint, expectedVersion uint, note string) (*model.KYCSubmission, error)

	// Reject records a rejection with a note. An under-review submission moves
	// to rejected; a verified submission is revoked back to documents_pending
	// and the seller's verified projection is cleared.
	Reject(ctx context.Context, submissionID uint, adminID uint, expectedVersion uint, note string) (*model.KYCSubmission, error)
}

type reviewService struct {
	db       *gorm.DB
	kycRepo  repository.KYCRepository
	userRepo repository.UserRepository
	notifier StatusNotifier
	cache    VerifiedCache
}

func NewReviewService(db *gorm.DB, kycRepo repository.KYCRepository, userRepo repository.UserRepository, notifier StatusNotifier, cache VerifiedCache) ReviewService {
	return &reviewService{
		db:       db,
		kycRepo:  kycRepo,
		userRepo: userRepo,
		notifier: notifier,
		cache:    cache,
	}
}

func (s *reviewService) ListSubmissions(status model.SubmissionStatus) ([]model.KYCSubmission, error) {
	if status != "" && !isListableStatus(status) {
		return nil, fmt.Errorf("unknown submission status: %s", status)
	}
	return s.kycRepo.ListByStatus(status)
}

func (s *reviewService) GetSubmission(submissionID uint) (*model.KYCSubmission, error) {
	submission, err := s.kycRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (s *reviewService) GetHistory(submissionID uint) ([]model.VerificationDecision, error) {
	if _, err := s.GetSubmission(submissionID); err != nil {
		return nil, err
	}
	return s.kycRepo.ListDecisions(submissionID)
}

func (s *reviewService) Approve(ctx context.Context, submissionID uint, adminID uint, expectedVersion uint, note string) (*model.KYCSubmission, error) {
	logger.Info("Approving KYC submission", map[string]interface{}{
		"submission_id": submissionID,
		"admin_id":      adminID,
		"version":       expectedVersion,
	})

	submission, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if expectedVersion == 0 {
		expectedVersion = submission.Version
	}

	if submission.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if submission.Status != model.StatusUnderReview {
		logger.Warn("Approval attempted on submission outside review", map[string]interface{}{
			"submission_id": submissionID,
			"status":        submission.Status,
		})
		return nil, ErrNotReviewable
	}

	// Completeness is re-derived from the attachment rows at decision time;
	// a stale admin view of the document list cannot approve a gap.
	eval := Evaluate(submission)
	if !eval.Complete() {
		logger.Warn("Approval blocked by missing documents", map[string]interface{}{
			"submission_id": submissionID,
			"missing":       eval.Missing,
		})
		return nil, &IncompleteSubmissionError{Missing: eval.Missing}
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":      model.StatusVerified,
			"is_verified": true,
			"verified_at": now,
			"verified_by": adminID,
		}
		if err := s.kycRepo.UpdateWithVersion(tx, submissionID, expectedVersion, updates); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return ErrConcurrentModification
			}
			return err
		}

		if err := s.userRepo.SetKYCVerified(tx, submission.UserID, true); err != nil {
			return err
		}

		return s.kycRepo.CreateDecision(tx, &model.VerificationDecision{
			SubmissionID: submissionID,
			AdminID:      adminID,
			Outcome:      model.DecisionApproved,
			Note:         note,
		})
	})
	if err != nil {
		logger.Error("Approval transaction failed", err, map[string]interface{}{
			"submission_id": submissionID,
			"admin_id":      adminID,
		})
		return nil, err
	}

	s.afterDecision(ctx, submission.UserID, model.StatusVerified, true)

	logger.Info("KYC submission approved", map[string]interface{}{
		"submission_id": submissionID,
		"admin_id":      adminID,
		"user_id":       submission.UserID,
	})

	return s.kycRepo.FindByID(submissionID)
}

func (s *reviewService) Reject(ctx context.Context, submissionID uint, adminID uint, expectedVersion uint, note string) (*model.KYCSubmission, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrNoteRequired
	}

	logger.Info("Rejecting KYC submission", map[string]interface{}{
		"submission_id": submissionID,
		"admin_id":      adminID,
		"version":       expectedVersion,
	})

	submission, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if expectedVersion == 0 {
		expectedVersion = submission.Version
	}

	// Rejecting a verified submission revokes it: the seller falls back to
	// documents_pending and must come through review again. Any other state
	// outside under_review has nothing to reject.
	var nextStatus model.SubmissionStatus
	switch submission.Status {
	case model.StatusUnderReview:
		nextStatus = model.StatusRejected
	case model.StatusVerified:
		nextStatus = model.StatusDocumentsPending
	default:
		return nil, ErrNotRevocable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":      nextStatus,
			"is_verified": false,
			"verified_at": nil,
			"verified_by": nil,
		}
		if err := s.kycRepo.UpdateWithVersion(tx, submissionID, expectedVersion, updates); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				return ErrConcurrentModification
			}
			return err
		}

		if err := s.userRepo.SetKYCVerified(tx, submission.UserID, false); err != nil {
			return err
		}

		return s.kycRepo.CreateDecision(tx, &model.VerificationDecision{
			SubmissionID: submissionID,
			AdminID:      adminID,
			Outcome:      model.DecisionRejected,
			Note:         note,
		})
	})
	if err != nil {
		logger.Error("Rejection transaction failed", err, map[string]interface{}{
			"submission_id": submissionID,
			"admin_id":      adminID,
		})
		return nil, err
	}

	s.afterDecision(ctx, submission.UserID, nextStatus, false)

	logger.Info("KYC submission rejected", map[string]interface{}{
		"submission_id": submissionID,
		"admin_id":      adminID,
		"user_id":       submission.UserID,
		"next_status":   nextStatus,
	})

	return s.kycRepo.FindByID(submissionID)
}

// afterDecision runs the best-effort side effects of a committed decision:
// cache refresh and seller notification. Failures are logged, never surfaced.
func (s *reviewService) afterDecision(ctx context.Context, userID uint, status model.SubmissionStatus, verified bool) {
	if s.cache != nil {
		if err := s.cache.CacheVerified(ctx, userID, verified); err != nil {
			logger.Warn("Failed to refresh verified-flag cache", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	if s.notifier != nil {
		s.notifier.NotifyStatus(userID, status)
	}
}

func isListableStatus(status model.SubmissionStatus) bool {
	switch status {
	case model.StatusDocumentsPending, model.StatusUnderReview, model.StatusVerified, model.StatusRejected:
		return true
	}
	return false
}
