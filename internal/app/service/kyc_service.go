package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/internal/app/repository"
	"github.com/nvaghela/dukaan-backend/internal/app/wizard"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

var (
	ErrSubmissionNotFound = errors.New("no KYC submission exists for this seller")
	ErrIdentityLocked     = errors.New("identity fields cannot change on a verified submission")
)

// SubmissionDetails carries the seller-editable business and identity fields.
type SubmissionDetails struct {
	CompanyName   string
	State         string
	City          string
	PINCode       string
	MobileNumber  string
	PANNumber     string
	AadhaarNumber string
	GSTNumber     string
}

// SubmissionStatusView is the seller-facing status projection: lifecycle
// state, the exact missing slots, progress, and the wizard step to resume at.
type SubmissionStatusView struct {
	Status          model.SubmissionStatus `json:"status"`
	Missing         []model.DocumentSlot   `json:"missing"`
	ProgressPercent int                    `json:"progress_percent"`
	ResumeStep      string                 `json:"resume_step"`
	Submission      *model.KYCSubmission   `json:"submission,omitempty"`
}

type KYCService interface {
	// SaveDetails upserts the seller's submission fields and advances the
	// state machine. The first save creates the submission.
	SaveDetails(userID uint, details SubmissionDetails) (*model.KYCSubmission, error)
	GetStatus(userID uint) (*SubmissionStatusView, error)
	GetSubmissionByUserID(userID uint) (*model.KYCSubmission, error)
	GetHistory(userID uint) ([]model.VerificationDecision, error)
}

type kycService struct {
	kycRepo  repository.KYCRepository
	notifier StatusNotifier
}

func NewKYCService(kycRepo repository.KYCRepository, notifier StatusNotifier) KYCService {
	return &kycService{
		kycRepo:  kycRepo,
		notifier: notifier,
	}
}

func (s *kycService) SaveDetails(userID uint, details SubmissionDetails) (*model.KYCSubmission, error) {
	logger.Info("Saving KYC submission details", map[string]interface{}{
		"user_id": userID,
	})

	submission, err := s.kycRepo.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to load submission for field save", err, map[string]interface{}{
				"user_id": userID,
			})
			return nil, err
		}
		return s.createSubmission(userID, details)
	}

	// Identity numbers are immutable once verified; an admin must reject the
	// submission to reopen them.
	if submission.IsVerified && identityChanged(submission, details) {
		logger.Warn("Rejected identity field edit on verified submission", map[string]interface{}{
			"user_id":       userID,
			"submission_id": submission.ID,
		})
		return nil, ErrIdentityLocked
	}

	previousStatus := submission.Status

	submission.CompanyName = details.CompanyName
	submission.State = details.State
	submission.City = details.City
	submission.PINCode = details.PINCode
	submission.MobileNumber = details.MobileNumber
	submission.PANNumber = details.PANNumber
	submission.AadhaarNumber = details.AadhaarNumber
	submission.GSTNumber = details.GSTNumber

	eval := Evaluate(submission)
	submission.Status = nextStatusAfterSellerMutation(submission.Status, eval)
	submission.Version++

	if err := s.kycRepo.Save(submission); err != nil {
		return nil, err
	}

	if submission.Status != previousStatus {
		logger.Info("Submission status changed after field save", map[string]interface{}{
			"user_id":       userID,
			"submission_id": submission.ID,
			"from":          previousStatus,
			"to":            submission.Status,
		})
		s.notify(userID, submission.Status)
	}

	logger.Info("KYC submission details saved", map[string]interface{}{
		"user_id":       userID,
		"submission_id": submission.ID,
		"status":        submission.Status,
		"missing_count": len(eval.Missing),
	})

	return submission, nil
}

func (s *kycService) createSubmission(userID uint, details SubmissionDetails) (*model.KYCSubmission, error) {
	submission := &model.KYCSubmission{
		UserID:        userID,
		CompanyName:   details.CompanyName,
		State:         details.State,
		City:          details.City,
		PINCode:       details.PINCode,
		MobileNumber:  details.MobileNumber,
		PANNumber:     details.PANNumber,
		AadhaarNumber: details.AadhaarNumber,
		GSTNumber:     details.GSTNumber,
		Status:        model.StatusDocumentsPending,
		Version:       1,
	}

	if err := s.kycRepo.Create(submission); err != nil {
		return nil, err
	}

	logger.Info("KYC submission created on first field save", map[string]interface{}{
		"user_id":       userID,
		"submission_id": submission.ID,
	})

	s.notify(userID, submission.Status)
	return submission, nil
}

func (s *kycService) GetStatus(userID uint) (*SubmissionStatusView, error) {
	submission, err := s.kycRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubmissionStatusView{
				Status:     model.StatusNoSubmission,
				Missing:    RequiredSlots(nil),
				ResumeStep: wizard.StepBusinessDetails.String(),
			}, nil
		}
		logger.Error("Failed to load submission for status", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	eval := Evaluate(submission)

	return &SubmissionStatusView{
		Status:          submission.Status,
		Missing:         eval.Missing,
		ProgressPercent: eval.ProgressPercent,
		ResumeStep: wizard.ResumeStep(wizard.Snapshot{
			PANNumber:         submission.PANNumber,
			DocumentsAttached: len(submission.Documents),
		}).String(),
		Submission: submission,
	}, nil
}

func (s *kycService) GetSubmissionByUserID(userID uint) (*model.KYCSubmission, error) {
	submission, err := s.kycRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (s *kycService) GetHistory(userID uint) ([]model.VerificationDecision, error) {
	submission, err := s.kycRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return s.kycRepo.ListDecisions(submission.ID)
}

func (s *kycService) notify(userID uint, status model.SubmissionStatus) {
	if s.notifier != nil {
		s.notifier.NotifyStatus(userID, status)
	}
}

// identityChanged reports whether the save would alter any locked identity
// number on a verified submission.
func identityChanged(submission *model.KYCSubmission, details SubmissionDetails) bool {
	return submission.PANNumber != details.PANNumber ||
		submission.AadhaarNumber != details.AadhaarNumber ||
		submission.GSTNumber != details.GSTNumber
}
