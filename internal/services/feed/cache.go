package feed

import (
	"sort"
	"sync"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// Cache keeps the newest reading per luminaria and the newest ambient light reading.
// Older frames never replace newer ones.
type Cache struct {
	mu     sync.RWMutex
	light  *messages.AmbientLight
	latest map[string]messages.Measurement
}

func NewCache() *Cache {
	return &Cache{latest: make(map[string]messages.Measurement)}
}

func (c *Cache) PutLight(l messages.AmbientLight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.light != nil && l.Fecha.Before(c.light.Fecha) {
		return
	}
	c.light = &l
}

func (c *Cache) PutMeasurement(m messages.Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.latest[m.IDLum]; ok && m.Fecha.Before(prev.Fecha) {
		return
	}
	c.latest[m.IDLum] = m
}

func (c *Cache) Light() (messages.AmbientLight, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.light == nil {
		return messages.AmbientLight{}, false
	}
	return *c.light, true
}

func (c *Cache) Latest(idLum string) (messages.Measurement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.latest[idLum]
	return m, ok
}

// All returns the newest reading of every luminaria ordered by id_lum.
func (c *Cache) All() []messages.Measurement {
	c.mu.RLock()
	out := make([]messages.Measurement, 0, len(c.latest))
	for _, m := range c.latest {
		out = append(out, m)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].IDLum < out[j].IDLum })
	return out
}
