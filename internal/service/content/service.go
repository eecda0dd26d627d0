package content

import (
	"context"
	"errors"
	"strings"

	"contentcheckout/internal/domain"
	contentrepo "contentcheckout/internal/repository/content"
)

type Service struct {
	repo contentrepo.Repository
}

func New(repo contentrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Content, error) {
	return s.repo.List(ctx)
}

// Get looks content up by id, falling back to its key.
func (s *Service) Get(ctx context.Context, idOrKey string) (*domain.Content, error) {
	idOrKey = strings.TrimSpace(idOrKey)
	if idOrKey == "" {
		return nil, domain.ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, idOrKey)
	if errors.Is(err, domain.ErrNotFound) {
		return s.repo.GetByKey(ctx, idOrKey)
	}
	return c, err
}

// GetPurchaseConditions returns the price terms of a content item.
func (s *Service) GetPurchaseConditions(ctx context.Context, contentID string) (domain.PurchaseConditions, error) {
	c, err := s.repo.GetByID(ctx, contentID)
	if err != nil {
		return domain.PurchaseConditions{}, err
	}
	return c.Conditions(), nil
}
