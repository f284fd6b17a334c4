package catalogrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dermalens/skin-advisor/internal/domain/catalog"
)

// PostgresRepository implements catalog.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List fetches products, filtered by skin type when one is given.
// Products tagged "all" always match.
func (r *PostgresRepository) List(ctx context.Context, skinType string) ([]catalog.Product, error) {
	query := `
		SELECT id, name, brand, category, price, currency, description, purchase_url, tags, skin_types
		FROM products
	`
	args := []any{}
	if skinType != "" {
		query += ` WHERE $1 = ANY(skin_types) OR 'all' = ANY(skin_types)`
		args = append(args, skinType)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.Currency, &p.Description, &p.PurchaseURL, &p.Tags, &p.SkinTypes); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

var _ catalog.Repository = (*PostgresRepository)(nil)
