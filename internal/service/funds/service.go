// Package funds settles submitted checkouts by recording purchases against the
// buyer's balance.
package funds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contentcheckout/internal/domain"
	purchaserepo "contentcheckout/internal/repository/purchase"
)

type purchaseRepo interface {
	Record(ctx context.Context, in purchaserepo.RecordInput) (*domain.Purchase, error)
}

type Service struct {
	repo   purchaseRepo
	logger logrus.FieldLogger
	newID  func() string
}

func New(repo purchaseRepo, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		repo:   repo,
		logger: logger.WithField("component", "funds"),
		newID:  func() string { return uuid.NewString() },
	}
}

// Submit records the purchase. Balance and crypto purchases settle from the
// balance immediately; card purchases are stored pending the vendor.
// Failures are returned as *domain.PurchaseError.
func (s *Service) Submit(ctx context.Context, req domain.FundsRequest) error {
	in := purchaserepo.RecordInput{
		ID:        s.newID(),
		BuyerID:   req.BuyerID,
		ContentID: req.ContentID,
		Method:    req.Method,
		Summary:   req.Summary,
	}
	switch req.Method {
	case domain.MethodBalance, domain.MethodCrypto:
		if req.AmountDueCents > 0 {
			return domain.NewPurchaseError(domain.ErrCodeInsufficientFunds,
				fmt.Sprintf("%d cents still due", req.AmountDueCents))
		}
		in.Status = domain.PurchaseStatusCompleted
	case domain.MethodCard:
		if !req.Vendor.Valid() {
			return domain.NewPurchaseError(domain.ErrCodeVendorRejected, "no card vendor")
		}
		in.Vendor = req.Vendor
		in.Status = domain.PurchaseStatusPending
	default:
		return domain.NewPurchaseError(domain.ErrCodeUnknown, fmt.Sprintf("unsupported method %q", req.Method))
	}

	p, err := s.repo.Record(ctx, in)
	if err != nil {
		perr := classify(err)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"buyer":   req.BuyerID,
			"content": req.ContentID,
			"method":  req.Method,
			"code":    perr.Code,
		}).Warn("purchase failed")
		return perr
	}
	s.logger.WithFields(logrus.Fields{
		"purchase":   p.ID,
		"buyer":      p.BuyerID,
		"content":    p.ContentID,
		"method":     p.Method,
		"status":     p.Status,
		"totalCents": p.TotalCents,
		"topUpCents": req.TopUpCents,
	}).Info("purchase recorded")
	return nil
}

// classify maps a settlement failure to a purchase error. The cause is logged by
// the caller and never copied into the message.
func classify(err error) *domain.PurchaseError {
	var pe *domain.PurchaseError
	switch {
	case errors.As(err, &pe):
		return pe
	case errors.Is(err, purchaserepo.ErrInsufficientBalance):
		return domain.PurchaseErrorFor(domain.ErrCodeInsufficientFunds)
	case errors.Is(err, context.Canceled):
		return domain.PurchaseErrorFor(domain.ErrCodeCancelled)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.PurchaseErrorFor(domain.ErrCodeNetworkFailure)
	}
	return domain.PurchaseErrorFor(domain.ErrCodeUnknown)
}
