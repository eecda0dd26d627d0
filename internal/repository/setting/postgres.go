package setting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"contentcheckout/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, bool_value, int_value FROM remote_config ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Setting
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Name, &s.BoolValue, &s.IntValue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, s domain.Setting) error {
	const q = `
INSERT INTO remote_config (name, bool_value, int_value)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET bool_value = EXCLUDED.bool_value,
    int_value = EXCLUDED.int_value,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, s.Name, s.BoolValue, s.IntValue)
	return err
}
