package catalogrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryListAll(t *testing.T) {
	repo := NewMemoryRepository()

	products, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 5)
}

func TestMemoryRepositoryFiltersBySkinType(t *testing.T) {
	repo := NewMemoryRepository()

	products, err := repo.List(context.Background(), "dry")
	require.NoError(t, err)
	require.NotEmpty(t, products)
	for _, p := range products {
		matches := false
		for _, st := range p.SkinTypes {
			if st == "dry" || st == "all" {
				matches = true
			}
		}
		require.True(t, matches, "product %q should match the filter", p.Name)
	}
}

func TestMemoryRepositoryAllTagMatchesEveryFilter(t *testing.T) {
	repo := NewMemoryRepository()

	products, err := repo.List(context.Background(), "sensitive")
	require.NoError(t, err)

	var foundSunscreen bool
	for _, p := range products {
		if p.Category == "spf" {
			foundSunscreen = true
		}
	}
	require.True(t, foundSunscreen, "the universal sunscreen should match every skin type")
}
