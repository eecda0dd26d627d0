package purchase

import (
	"context"
	"errors"

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

const selectPurchase = `
SELECT id::text, buyer_id, content_id::text, method, COALESCE(vendor, ''), total_cents, extra_amount_cents,
       balance_used_cents, amount_due_cents, status, created_at
FROM purchases
`

func (r *postgresRepo) Record(ctx context.Context, in RecordInput) (*domain.Purchase, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if used := in.Summary.BalanceUsedCents; used > 0 {
		cmd, err := tx.Exec(ctx, `
UPDATE balances
SET balance_cents = balance_cents - $2,
    updated_at = now()
WHERE buyer_id = $1 AND balance_cents >= $2
`, in.BuyerID, used)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			return nil, ErrInsufficientBalance
		}
	}

	var vendor *string
	if in.Vendor != "" {
		v := string(in.Vendor)
		vendor = &v
	}
	const q = `
INSERT INTO purchases (id, buyer_id, content_id, method, vendor, total_cents, extra_amount_cents,
                       balance_used_cents, amount_due_cents, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at
`
	p := domain.Purchase{
		ID:               in.ID,
		BuyerID:          in.BuyerID,
		ContentID:        in.ContentID,
		Method:           in.Method,
		Vendor:           in.Vendor,
		TotalCents:       in.Summary.TotalPriceCents,
		ExtraAmountCents: in.Summary.ExtraAmountCents,
		BalanceUsedCents: in.Summary.BalanceUsedCents,
		AmountDueCents:   in.Summary.AmountDueCents,
		Status:           in.Status,
	}
	if err := tx.QueryRow(ctx, q,
		p.ID,
		p.BuyerID,
		p.ContentID,
		string(p.Method),
		vendor,
		p.TotalCents,
		p.ExtraAmountCents,
		p.BalanceUsedCents,
		p.AmountDueCents,
		p.Status,
	).Scan(&p.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx, selectPurchase+`WHERE id = $1::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	rows, err := r.pool.Query(ctx, selectPurchase+`WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var (
		p      domain.Purchase
		method string
		vendor string
	)
	if err := row.Scan(
		&p.ID,
		&p.BuyerID,
		&p.ContentID,
		&method,
		&vendor,
		&p.TotalCents,
		&p.ExtraAmountCents,
		&p.BalanceUsedCents,
		&p.AmountDueCents,
		&p.Status,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Method = domain.PurchaseMethod(method)
	p.Vendor = domain.PurchaseVendor(vendor)
	return &p, nil
}
