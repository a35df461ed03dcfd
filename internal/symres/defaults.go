package symres

import "github.com/creasty/defaults"

// applyDefaults fills zero-valued fields of cfg from its `default` struct
// tags. Isolated in its own file so the creasty/defaults dependency has one
// obvious call site.
func applyDefaults(cfg *Config) {
	_ = defaults.Set(cfg)
}
