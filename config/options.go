package config

import "github.com/IvanBrykalov/rendercache/virtual"

// PrivateOptions maps the private section onto facade options.
func PrivateOptions[K comparable, D, R any](cfg Config) virtual.Options[K, D, R] {
	return cacheOptions[K, D, R](cfg.Private, cfg.Warm)
}

// SharedOptions maps the shared section onto facade options.
// EnableMetrics has no effect: a shared cache always collects metrics.
func SharedOptions[K comparable, D, R any](cfg Config) virtual.Options[K, D, R] {
	return cacheOptions[K, D, R](cfg.Shared, cfg.Warm)
}

func cacheOptions[K comparable, D, R any](cc CacheConfig, w WarmConfig) virtual.Options[K, D, R] {
	return virtual.Options[K, D, R]{
		MaxSize:         cc.MaxSize,
		TTL:             cc.TTL.Std(),
		DisableMetrics:  !cc.EnableMetrics,
		WarmConcurrency: w.Concurrency,
	}
}
