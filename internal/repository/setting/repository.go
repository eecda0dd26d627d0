package setting

import (
	"context"

	"contentcheckout/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Upsert(ctx context.Context, s domain.Setting) error
}
