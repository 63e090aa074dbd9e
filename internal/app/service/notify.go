package service

import (
	"context"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
)

// StatusNotifier pushes verification state changes to the owning seller.
// Delivery is best-effort; persisted state is the source of truth.
type StatusNotifier interface {
	NotifyStatus(userID uint, status model.SubmissionStatus)
}

// VerifiedCache mirrors the seller's kyc_verified projection into a fast
// lookup store after a completed decision.
type VerifiedCache interface {
	CacheVerified(ctx context.Context, sellerID uint, verified bool) error
}
