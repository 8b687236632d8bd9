// Package dedup remembers provider message IDs so retried webhook deliveries are processed once.
package dedup

import (
	"context"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Store reports whether a key was already seen, marking it seen if not.
// Forget unmarks a key so a redelivery after a failed attempt is processed again.
type Store interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}
