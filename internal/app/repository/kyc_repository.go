package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

// ErrStaleVersion is returned when a versioned update matched no row because
// the submission changed since it was read.
var ErrStaleVersion = errors.New("submission version is stale")

type KYCRepository interface {
	Create(submission *model.KYCSubmission) error
	Save(submission *model.KYCSubmission) error
	FindByUserID(userID uint) (*model.KYCSubmission, error)
	FindByID(id uint) (*model.KYCSubmission, error)
	ListByStatus(status model.SubmissionStatus) ([]model.KYCSubmission, error)

	// UpdateWithVersion applies updates only if the stored version still equals
	// expectedVersion, bumping the version in the same statement. Runs on the
	// given handle so it can participate in a decision transaction.
	UpdateWithVersion(tx *gorm.DB, submissionID uint, expectedVersion uint, updates map[string]interface{}) error

	UpsertDocument(doc *model.KYCDocument) error
	FindDocument(submissionID uint, slot model.DocumentSlot) (*model.KYCDocument, error)
	DeleteDocument(submissionID uint, slot model.DocumentSlot) error

	CreateDecision(tx *gorm.DB, decision *model.VerificationDecision) error
	ListDecisions(submissionID uint) ([]model.VerificationDecision, error)
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) Create(submission *model.KYCSubmission) error {
	logger.Debug("Creating KYC submission in database", map[string]interface{}{
		"user_id": submission.UserID,
	})

	if err := r.db.Create(submission).Error; err != nil {
		logger.Error("Failed to create KYC submission in database", err, map[string]interface{}{
			"user_id": submission.UserID,
		})
		return err
	}

	logger.Debug("KYC submission created in database", map[string]interface{}{
		"submission_id": submission.ID,
		"user_id":       submission.UserID,
	})
	return nil
}

func (r *kycRepository) Save(submission *model.KYCSubmission) error {
	logger.Debug("Saving KYC submission in database", map[string]interface{}{
		"submission_id": submission.ID,
	})

	if err := r.db.Omit("Documents", "User").Save(submission).Error; err != nil {
		logger.Error("Failed to save KYC submission in database", err, map[string]interface{}{
			"submission_id": submission.ID,
		})
		return err
	}
	return nil
}

func (r *kycRepository) FindByUserID(userID uint) (*model.KYCSubmission, error) {
	var submission model.KYCSubmission
	err := r.db.Preload("Documents").Where("user_id = ?", userID).First(&submission).Error
	if err != nil {
		logger.Debug("KYC submission not found by user ID", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &submission, nil
}

func (r *kycRepository) FindByID(id uint) (*model.KYCSubmission, error) {
	var submission model.KYCSubmission
	err := r.db.Preload("Documents").First(&submission, id).Error
	if err != nil {
		logger.Debug("KYC submission not found by ID", map[string]interface{}{
			"submission_id": id,
			"error":         err.Error(),
		})
		return nil, err
	}
	return &submission, nil
}

func (r *kycRepository) ListByStatus(status model.SubmissionStatus) ([]model.KYCSubmission, error) {
	var submissions []model.KYCSubmission
	query := r.db.Preload("Documents").Order("updated_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&submissions).Error; err != nil {
		logger.Error("Failed to list KYC submissions", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return submissions, nil
}

func (r *kycRepository) UpdateWithVersion(tx *gorm.DB, submissionID uint, expectedVersion uint, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}

	updates["version"] = gorm.Expr("version + 1")

	result := tx.Model(&model.KYCSubmission{}).
		Where("id = ? AND version = ?", submissionID, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to apply versioned submission update", result.Error, map[string]interface{}{
			"submission_id": submissionID,
			"version":       expectedVersion,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		logger.Warn("Versioned submission update matched no row", map[string]interface{}{
			"submission_id": submissionID,
			"version":       expectedVersion,
		})
		return ErrStaleVersion
	}

	logger.Debug("Versioned submission update applied", map[string]interface{}{
		"submission_id": submissionID,
		"version":       expectedVersion,
	})
	return nil
}

// UpsertDocument inserts the attachment row for a slot, replacing the existing
// row on conflict. The (submission_id, slot) unique index guarantees a slot
// never accumulates a second attachment.
func (r *kycRepository) UpsertDocument(doc *model.KYCDocument) error {
	logger.Debug("Upserting KYC document in database", map[string]interface{}{
		"submission_id": doc.SubmissionID,
		"slot":          doc.Slot,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"storage_key", "file_name", "content_type", "size_bytes", "uploaded_by", "updated_at",
		}),
	}).Create(doc).Error
	if err != nil {
		logger.Error("Failed to upsert KYC document in database", err, map[string]interface{}{
			"submission_id": doc.SubmissionID,
			"slot":          doc.Slot,
		})
		return err
	}

	logger.Debug("KYC document upserted in database", map[string]interface{}{
		"submission_id": doc.SubmissionID,
		"slot":          doc.Slot,
	})
	return nil
}

func (r *kycRepository) FindDocument(submissionID uint, slot model.DocumentSlot) (*model.KYCDocument, error) {
	var doc model.KYCDocument
	err := r.db.Where("submission_id = ? AND slot = ?", submissionID, slot).First(&doc).Error
	if err != nil {
		logger.Debug("KYC document not found", map[string]interface{}{
			"submission_id": submissionID,
			"slot":          slot,
			"error":         err.Error(),
		})
		return nil, err
	}
	return &doc, nil
}

func (r *kycRepository) DeleteDocument(submissionID uint, slot model.DocumentSlot) error {
	logger.Debug("Deleting KYC document from database", map[string]interface{}{
		"submission_id": submissionID,
		"slot":          slot,
	})

	result := r.db.Where("submission_id = ? AND slot = ?", submissionID, slot).Delete(&model.KYCDocument{})
	if result.Error != nil {
		logger.Error("Failed to delete KYC document from database", result.Error, map[string]interface{}{
			"submission_id": submissionID,
			"slot":          slot,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *kycRepository) CreateDecision(tx *gorm.DB, decision *model.VerificationDecision) error {
	if tx == nil {
		tx = r.db
	}

	if err := tx.Create(decision).Error; err != nil {
		logger.Error("Failed to create verification decision", err, map[string]interface{}{
			"submission_id": decision.SubmissionID,
			"admin_id":      decision.AdminID,
			"outcome":       decision.Outcome,
		})
		return err
	}

	logger.Debug("Verification decision recorded", map[string]interface{}{
		"submission_id": decision.SubmissionID,
		"admin_id":      decision.AdminID,
		"outcome":       decision.Outcome,
	})
	return nil
}

func (r *kycRepository) ListDecisions(submissionID uint) ([]model.VerificationDecision, error) {
	var decisions []model.VerificationDecision
	err := r.db.Where("submission_id = ?", submissionID).Order("created_at ASC").Find(&decisions).Error
	if err != nil {
		logger.Error("Failed to list verification decisions", err, map[string]interface{}{
			"submission_id": submissionID,
		})
		return nil, err
	}
	return decisions, nil
}
