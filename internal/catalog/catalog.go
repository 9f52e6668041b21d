// Package catalog exposes the read-only price catalog the sell flow and the
// re-offer form pre-fill from. Catalog management (XML feed import, CRUD)
// lives in a separate system; this engine only looks prices up.
package catalog

import "context"

// PriceCatalog answers "what is this device worth" queries.
type PriceCatalog interface {
	// SuggestedPrice returns the current catalog price for a device
	// variant, or domain.ErrNotFound when the variant is not listed.
	SuggestedPrice(ctx context.Context, device, storageSize, carrier string) (int64, error)
}
