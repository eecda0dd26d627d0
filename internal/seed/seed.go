package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contentSeed struct {
	Key        string
	Title      string
	PriceCents int64
	Currency   string
}

type balanceSeed struct {
	BuyerID string
	Cents   int64
}

type settingSeed struct {
	Name      string
	BoolValue *bool
	IntValue  *int64
}

func boolPtr(v bool) *bool    { return &v }
func int64Ptr(v int64) *int64 { return &v }

// Apply inserts demo content, balances and remote config for manual testing.
// It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	contents := []contentSeed{
		{Key: "demo-track", Title: "Demo Track", PriceCents: 199, Currency: "USD"},
		{Key: "demo-album", Title: "Demo Album", PriceCents: 999, Currency: "USD"},
		{Key: "demo-stems", Title: "Demo Stems Pack", PriceCents: 25_000, Currency: "USD"},
	}
	for _, c := range contents {
		if err := upsertContent(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert content %s: %w", c.Key, err)
		}
	}

	balances := []balanceSeed{
		{BuyerID: "demo-rich", Cents: 50_000},
		{BuyerID: "demo-some", Cents: 500},
		{BuyerID: "demo-empty", Cents: 0},
	}
	for _, b := range balances {
		if err := upsertBalance(ctx, pool, b); err != nil {
			return fmt.Errorf("upsert balance %s: %w", b.BuyerID, err)
		}
	}

	settings := []settingSeed{
		{Name: "alternate_processor_enabled", BoolValue: boolPtr(true)},
		{Name: "alternate_processor_max_cents", IntValue: int64Ptr(10_000)},
	}
	for _, s := range settings {
		if err := upsertSetting(ctx, pool, s); err != nil {
			return fmt.Errorf("upsert setting %s: %w", s.Name, err)
		}
	}

	return nil
}

func upsertContent(ctx context.Context, pool *pgxpool.Pool, c contentSeed) error {
	const q = `
INSERT INTO contents (key, title, price_cents, currency)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE
SET title = EXCLUDED.title,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
`
	_, err := pool.Exec(ctx, q, c.Key, c.Title, c.PriceCents, c.Currency)
	return err
}

func upsertBalance(ctx context.Context, pool *pgxpool.Pool, b balanceSeed) error {
	const q = `
INSERT INTO balances (buyer_id, balance_cents)
VALUES ($1, $2)
ON CONFLICT (buyer_id) DO UPDATE
SET balance_cents = EXCLUDED.balance_cents,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, b.BuyerID, b.Cents)
	return err
}

func upsertSetting(ctx context.Context, pool *pgxpool.Pool, s settingSeed) error {
	const q = `
INSERT INTO remote_config (name, bool_value, int_value)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO NOTHING
`
	_, err := pool.Exec(ctx, q, s.Name, s.BoolValue, s.IntValue)
	return err
}
