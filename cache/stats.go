package cache

// MetricsSnapshot is a copy of the request and eviction counters.
type MetricsSnapshot struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Evictions     uint64  `json:"evictions"`
	TotalRequests uint64  `json:"totalRequests"`
	HitRate       float64 `json:"hitRate"` // percent, 0 when TotalRequests == 0
	InstanceCount int     `json:"instanceCount"`
}

// Stats describes occupancy of the store.
type Stats struct {
	Size            int             `json:"size"`
	MaxSize         int             `json:"maxSize"`
	UtilizationRate float64         `json:"utilizationRate"` // percent of MaxSize
	Metrics         MetricsSnapshot `json:"metrics"`
}

// counters is guarded by the store lock; all fields only grow until reset.
type counters struct {
	hits      uint64
	misses    uint64
	evictions uint64
}

func (c *counters) reset() { *c = counters{} }

func (c *counters) snapshot(instances int) MetricsSnapshot {
	total := c.hits + c.misses
	m := MetricsSnapshot{
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
		TotalRequests: total,
		InstanceCount: instances,
	}
	if total > 0 {
		m.HitRate = float64(c.hits) / float64(total) * 100
	}
	return m
}
