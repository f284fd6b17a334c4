package catalog

import (
	"context"
	"log/slog"
	"sort"

	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

// Product is one recommendable skincare item.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	PurchaseURL string   `json:"purchaseUrl"`
	Tags        []string `json:"tags,omitempty"`
	SkinTypes   []string `json:"skinTypes"`
}

// Repository lists products, optionally filtered by skin type. A
// product tagged "all" matches every filter.
type Repository interface {
	List(ctx context.Context, skinType string) ([]Product, error)
}

// Service fronts the repository for the HTTP layer.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns products matching the skin type filter, sorted by
// category then name for stable output.
func (s *Service) List(ctx context.Context, skinType string) ([]Product, error) {
	products, err := s.repo.List(ctx, skinType)
	if err != nil {
		return nil, apperrors.Wrap("upstream_error", "failed to load product catalog", err)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}
