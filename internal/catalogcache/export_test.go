package catalogcache

import "time"

// SetClock replaces the time source so expiry can be tested.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}
