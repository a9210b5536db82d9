package cache

import (
	"context"
	"fmt"
)

// Keys and channels for the rendering layer's view cache. The renderer
// caches the dashboard view under viewRootKey and subscribes to
// invalidationChannel to drop its local copies.
const (
	viewRootKey         = "view:dashboard"
	invalidationChannel = "view-invalidations"
)

// InvalidateDashboard marks the cached dashboard view as stale: it
// deletes the shared view entry and broadcasts the key to subscribed
// renderers. This is a best-effort signal sent after commit; the data
// layer is correct without it.
func (c *Cache) InvalidateDashboard(ctx context.Context) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, viewRootKey)
	pipe.Publish(ctx, invalidationChannel, viewRootKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate dashboard view: %w", err)
	}

	return nil
}
