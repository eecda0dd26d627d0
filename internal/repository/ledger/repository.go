package ledger

import "context"

// Repository reads and credits buyer balances.
type Repository interface {
	GetBalance(ctx context.Context, buyerID string) (int64, error)
	Credit(ctx context.Context, buyerID string, cents int64) (int64, error)
}
