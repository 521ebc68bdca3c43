package domain

import "context"

// AssetStore releases stored file assets (cover images). The core only holds
// opaque references; upload mechanics live with the caller.
type AssetStore interface {
	Delete(ctx context.Context, ref string) error
}
