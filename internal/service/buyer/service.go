package buyer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contentcheckout/internal/domain"
)

// ErrInvalidCredit is returned for non-positive credits.
var ErrInvalidCredit = errors.New("credit must be positive")

type ledgerRepo interface {
	GetBalance(ctx context.Context, buyerID string) (int64, error)
	Credit(ctx context.Context, buyerID string, cents int64) (int64, error)
}

type purchaseRepo interface {
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error)
}

type Service struct {
	ledger    ledgerRepo
	purchases purchaseRepo
}

func New(ledger ledgerRepo, purchases purchaseRepo) *Service {
	return &Service{ledger: ledger, purchases: purchases}
}

// Balance returns the buyer's balance. Buyers without a ledger row hold zero.
func (s *Service) Balance(ctx context.Context, buyerID string) (domain.Balance, error) {
	cents, err := s.ledger.GetBalance(ctx, strings.TrimSpace(buyerID))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.KnownBalance(0), nil
	}
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.KnownBalance(cents), nil
}

// Credit adds funds to the buyer's balance, as a completed crypto transfer would.
func (s *Service) Credit(ctx context.Context, buyerID string, cents int64) (domain.Balance, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return domain.Balance{}, domain.ErrNotFound
	}
	if cents <= 0 {
		return domain.Balance{}, fmt.Errorf("%w: got %d", ErrInvalidCredit, cents)
	}
	total, err := s.ledger.Credit(ctx, buyerID, cents)
	if err != nil {
		return domain.Balance{}, err
	}
	return domain.KnownBalance(total), nil
}

func (s *Service) Purchases(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	return s.purchases.ListByBuyer(ctx, strings.TrimSpace(buyerID))
}
