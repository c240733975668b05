package cache

import "time"

// expiryLoop periodically scans and removes expired entries.
//
// A ticker-driven full scan avoids per-entry timers, at the cost of O(n) work
// per tick.
func (c *Cache) expiryLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			removed := c.deleteExpiredLocked(c.now())
			c.mu.Unlock()

			if removed > 0 {
				c.log.Debug().Int("removed", removed).Msg("expired entries cleaned up")
			}
		}
	}
}
