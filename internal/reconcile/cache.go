package reconcile

import "sync"

// Cache is a driver client's local view of its missions and operational
// status. It can silently drift from the durable source of truth (missed
// relay events, cleared state, new device); the Agent repairs it.
type Cache struct {
	mu       sync.RWMutex
	driverID string
	status   string
	missions map[string]Mission
}

func NewCache(driverID string) *Cache {
	return &Cache{
		driverID: driverID,
		status:   TruckIdle,
		missions: make(map[string]Mission),
	}
}

func (c *Cache) DriverID() string {
	return c.driverID
}

func (c *Cache) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Cache) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// Upsert stores a mission, replacing any previous copy with the same ID.
// Receiving the same assignment twice is therefore harmless.
func (c *Cache) Upsert(m Mission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missions[m.ID] = m
}

// Get returns the cached mission with the given ID.
func (c *Cache) Get(id string) (Mission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.missions[id]
	return m, ok
}

// SetMissionStatus transitions a cached mission; unknown IDs are ignored.
func (c *Cache) SetMissionStatus(id, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.missions[id]; ok {
		m.Status = status
		c.missions[id] = m
	}
}

// Active returns this driver's mission in ACCEPTED state, if any.
func (c *Cache) Active() (Mission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.missions {
		if m.DriverID == c.driverID && m.Status == StatusAccepted {
			return m, true
		}
	}
	return Mission{}, false
}

// Pending returns this driver's missions awaiting acceptance.
func (c *Cache) Pending() []Mission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Mission
	for _, m := range c.missions {
		if m.DriverID == c.driverID && m.Status == StatusPending {
			out = append(out, m)
		}
	}
	return out
}
