package content

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"contentcheckout/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &postgresRepo{pool: pool, logger: logger.WithField("repo", "content")}
}

const selectContent = `
SELECT id::text, key, title, price_cents, currency, created_at
FROM contents
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Content, error) {
	rows, err := r.pool.Query(ctx, selectContent+`ORDER BY created_at DESC`)
	if err != nil {
		r.logger.WithError(err).Error("list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Content
	for rows.Next() {
		var c domain.Content
		if err := rows.Scan(&c.ID, &c.Key, &c.Title, &c.PriceCents, &c.Currency, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("list rows")
		return nil, err
	}
	r.logger.WithField("count", len(result)).Debug("list")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	return r.getOne(ctx, selectContent+`WHERE id = $1::uuid`, id)
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Content, error) {
	return r.getOne(ctx, selectContent+`WHERE key = $1`, key)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg string) (*domain.Content, error) {
	var c domain.Content
	err := r.pool.QueryRow(ctx, q, arg).Scan(&c.ID, &c.Key, &c.Title, &c.PriceCents, &c.Currency, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 22P02: the id is not a valid uuid, so no such content exists.
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") {
			r.logger.WithField("lookup", arg).Debug("get not found")
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("lookup", arg).Error("get")
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Content) (*domain.Content, error) {
	const q = `
INSERT INTO contents (id, key, title, price_cents, currency)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5)
ON CONFLICT (key) DO UPDATE SET
    title = EXCLUDED.title,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
RETURNING id::text, created_at
`
	var res domain.Content
	err := r.pool.QueryRow(ctx, q, c.ID, c.Key, c.Title, c.PriceCents, c.Currency).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.WithError(err).WithField("key", c.Key).Error("upsert")
		return nil, err
	}
	if c.ID != "" && res.ID != c.ID {
		return nil, fmt.Errorf("content repo: id mismatch for key=%s existing_id=%s import_id=%s", c.Key, res.ID, c.ID)
	}
	res.Key = c.Key
	res.Title = c.Title
	res.PriceCents = c.PriceCents
	res.Currency = c.Currency
	r.logger.WithFields(logrus.Fields{"key": res.Key, "id": res.ID}).Debug("upserted")
	return &res, nil
}
