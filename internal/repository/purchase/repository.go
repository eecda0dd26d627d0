package purchase

import (
	"context"
	"errors"

	"contentcheckout/internal/domain"
)

// ErrInsufficientBalance is returned when the buyer's balance row does not
// cover the balance portion of a purchase.
var ErrInsufficientBalance = errors.New("insufficient balance")

type RecordInput struct {
	ID        string
	BuyerID   string
	ContentID string
	Method    domain.PurchaseMethod
	Vendor    domain.PurchaseVendor
	Summary   domain.PurchaseSummary
	Status    string
}

type Repository interface {
	// Record debits the balance portion of the purchase and stores it, atomically.
	Record(ctx context.Context, in RecordInput) (*domain.Purchase, error)
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error)
}
