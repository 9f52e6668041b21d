package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"buyback-backend/internal/domain"
)

type postgresCatalog struct {
	db *sql.DB
}

// NewPostgresCatalog wires the catalog against the pricing database the feed
// importer maintains.
func NewPostgresCatalog(db *sql.DB) PriceCatalog {
	return &postgresCatalog{db: db}
}

func (c *postgresCatalog) SuggestedPrice(ctx context.Context, device, storageSize, carrier string) (int64, error) {
	query := `SELECT price FROM device_prices WHERE device = $1 AND storage = $2 AND carrier = $3 AND active = true ORDER BY updated_on DESC LIMIT 1`

	var price int64
	err := c.db.QueryRowContext(ctx, query, device, storageSize, carrier).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: no catalog price for %s %s %s", domain.ErrNotFound, device, storageSize, carrier)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up catalog price: %w", err)
	}
	return price, nil
}
