package cart

import "context"

// CartStore persists carts by session ID. The cache-backed implementation
// applies a sliding TTL; a missing key reads back as an empty cart.
type CartStore interface {
	// Get loads the cart for a session, returning a fresh empty cart when
	// none is stored
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
