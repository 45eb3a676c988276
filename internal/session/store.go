// Package session keeps each visitor's cart and flash messages, keyed by a
// session id carried in a signed cookie.
package session

import (
	"context"

	"Ubermelon/internal/cart"
)

// Store implementations must make AddItem atomic per session: concurrent
// adds of the same melon never lose an increment.
type Store interface {
	Cart(ctx context.Context, sessionID string) (cart.Cart, error)
	AddItem(ctx context.Context, sessionID, melonID string) (int, error)
	Reset(ctx context.Context, sessionID string) error

	AddFlash(ctx context.Context, sessionID, msg string) error
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)

	Ping(ctx context.Context) error
}
