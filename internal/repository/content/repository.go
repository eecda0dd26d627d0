package content

import (
	"context"

	"contentcheckout/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Content, error)
	GetByID(ctx context.Context, id string) (*domain.Content, error)
	GetByKey(ctx context.Context, key string) (*domain.Content, error)
	Upsert(ctx context.Context, c domain.Content) (*domain.Content, error)
}
