package catalogrepo

import (
	"context"
	"slices"
	"sync"

	"github.com/dermalens/skin-advisor/internal/domain/catalog"
)

// MemoryRepository is an in-memory catalog.Repository used when no
// database is configured. It ships with a small seed set so the
// products endpoint works out of the box.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []catalog.Product
}

// NewMemoryRepository constructs a repo seeded with sample products.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{products: seedProducts()}
}

// List implements catalog.Repository.
func (r *MemoryRepository) List(_ context.Context, skinType string) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []catalog.Product
	for _, p := range r.products {
		if skinType != "" && !slices.Contains(p.SkinTypes, skinType) && !slices.Contains(p.SkinTypes, "all") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func seedProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:          1,
			Name:        "Foaming Facial Cleanser",
			Brand:       "CeraVe",
			Category:    "cleanser",
			Price:       14.99,
			Currency:    "USD",
			Description: "Gentle foaming cleanser with ceramides and hyaluronic acid for normal to oily skin",
			PurchaseURL: "https://www.cerave.com/skincare/cleansers/foaming-facial-cleanser",
			Tags:        []string{"fragrance-free", "non-comedogenic"},
			SkinTypes:   []string{"oily", "combination", "normal"},
		},
		{
			ID:          2,
			Name:        "Hydrating Facial Cleanser",
			Brand:       "CeraVe",
			Category:    "cleanser",
			Price:       14.99,
			Currency:    "USD",
			Description: "Creamy, non-foaming cleanser for dry to normal skin",
			PurchaseURL: "https://www.cerave.com/skincare/cleansers/hydrating-facial-cleanser",
			Tags:        []string{"fragrance-free", "non-comedogenic"},
			SkinTypes:   []string{"dry", "normal", "sensitive"},
		},
		{
			ID:          3,
			Name:        "Niacinamide 10% + Zinc 1%",
			Brand:       "The Ordinary",
			Category:    "treatment",
			Price:       5.99,
			Currency:    "USD",
			Description: "High-strength niacinamide serum to reduce blemishes and congestion",
			PurchaseURL: "https://theordinary.com/en-us/niacinamide-10-zinc-1-serum-100412.html",
			Tags:        []string{"vegan", "cruelty-free", "oil-free"},
			SkinTypes:   []string{"oily", "combination"},
		},
		{
			ID:          4,
			Name:        "Daily Moisturizing Lotion",
			Brand:       "CeraVe",
			Category:    "moisturizer",
			Price:       16.99,
			Currency:    "USD",
			Description: "Lightweight, non-greasy moisturizer for all skin types",
			PurchaseURL: "https://www.cerave.com/skincare/moisturizers/daily-moisturizing-lotion",
			Tags:        []string{"fragrance-free", "non-comedogenic"},
			SkinTypes:   []string{"normal", "oily", "combination"},
		},
		{
			ID:          5,
			Name:        "Ultra-Light Daily Sunscreen SPF 50",
			Brand:       "La Roche-Posay",
			Category:    "spf",
			Price:       19.99,
			Currency:    "USD",
			Description: "Lightweight, non-greasy sunscreen for face",
			PurchaseURL: "https://www.laroche-posay.us/anthelios",
			Tags:        []string{"broad-spectrum", "water-resistant", "fragrance-free"},
			SkinTypes:   []string{"all"},
		},
	}
}

var _ catalog.Repository = (*MemoryRepository)(nil)
