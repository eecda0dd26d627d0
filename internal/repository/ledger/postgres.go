package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentcheckout/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// GetBalance returns domain.ErrNotFound for buyers without a balance row.
func (r *postgresRepo) GetBalance(ctx context.Context, buyerID string) (int64, error) {
	var cents int64
	err := r.pool.QueryRow(ctx, `SELECT balance_cents FROM balances WHERE buyer_id = $1`, buyerID).Scan(&cents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return cents, nil
}

func (r *postgresRepo) Credit(ctx context.Context, buyerID string, cents int64) (int64, error) {
	if cents <= 0 {
		return 0, fmt.Errorf("credit must be positive, got %d", cents)
	}
	const q = `
INSERT INTO balances (buyer_id, balance_cents)
VALUES ($1, $2)
ON CONFLICT (buyer_id) DO UPDATE
SET balance_cents = balances.balance_cents + EXCLUDED.balance_cents,
    updated_at = now()
RETURNING balance_cents
`
	var total int64
	if err := r.pool.QueryRow(ctx, q, buyerID, cents).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
