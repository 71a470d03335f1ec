package virtual

import (
	"log/slog"
	"time"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/warm"
)

// Default capacities for the two shapes.
const (
	DefaultPrivateMaxSize = 100
	DefaultSharedMaxSize  = 200
)

// Options configures a Private or Shared cache. Zero values are safe.
type Options[K comparable, D, R any] struct {
	// MaxSize is the entry limit; 0 selects the shape's default.
	MaxSize int
	// TTL is the idle lifetime of an entry; 0 selects cache.DefaultTTL.
	TTL time.Duration

	// DisableMetrics turns off hit/miss counting. Ignored by Shared, which
	// always collects metrics.
	DisableMetrics bool

	// KeyOf extracts the item id; required by Warm (Warm is a no-op without it).
	KeyOf func(D) K
	// WarmConcurrency bounds parallel rendering inside Warm.
	WarmConcurrency int

	// SweepInterval overrides the periodic sweep period.
	// 0 => cache.SweepInterval(TTL); negative disables the periodic sweep.
	SweepInterval time.Duration

	Metrics cache.Metrics
	OnEvict func(k K, e cache.Entry[D, R], reason cache.EvictReason)
	Clock   cache.Clock

	// Logger receives debug events (attach, detach, sweeps); nil => slog.Default().
	Logger *slog.Logger
}

// components is what both shapes build from Options.
type components[K comparable, D, R any] struct {
	c       cache.Cache[K, D, R]
	warmer  *warm.Warmer[K, D, R]
	sweeper *cache.Sweeper
	log     *slog.Logger
}

func build[K comparable, D, R any](opt Options[K, D, R], defaultMax int, kind string) components[K, D, R] {
	if opt.MaxSize == 0 {
		opt.MaxSize = defaultMax
	}
	if opt.TTL == 0 {
		opt.TTL = cache.DefaultTTL
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("cache", kind)

	c := cache.New[K, D, R](cache.Options[K, D, R]{
		MaxSize:        opt.MaxSize,
		TTL:            opt.TTL,
		DisableMetrics: opt.DisableMetrics,
		OnEvict:        opt.OnEvict,
		Metrics:        opt.Metrics,
		Clock:          opt.Clock,
	})

	var w *warm.Warmer[K, D, R]
	if opt.KeyOf != nil {
		w = warm.New[K, D, R](c, opt.KeyOf, warm.Options{Concurrency: opt.WarmConcurrency})
	}

	interval := opt.SweepInterval
	if interval == 0 {
		interval = cache.SweepInterval(opt.TTL)
	}
	if interval <= 0 {
		log.Debug("periodic sweep disabled", "ttl", opt.TTL)
	}
	sw := cache.StartSweeper(c, interval, func(removed int) {
		if removed > 0 {
			log.Debug("swept expired entries", "removed", removed)
		}
	})

	return components[K, D, R]{c: c, warmer: w, sweeper: sw, log: log}
}
