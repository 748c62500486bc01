package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines product lookups the storefront needs. The catalog
// browsing surface (filters, pagination) is served elsewhere.
type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, price, sale_price, stock, available, created_at
		FROM products
		WHERE id = $1
	`

	p := &domain.Product{}
	var salePrice sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&salePrice,
		&p.Stock,
		&p.Available,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}

	if salePrice.Valid {
		sp, err := decimal.NewFromString(salePrice.String)
		if err != nil {
			return nil, fmt.Errorf("parse sale price: %w", err)
		}
		p.SalePrice = &sp
	}

	return p, nil
}
