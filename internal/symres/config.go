package symres

// Config parameterizes PLT resolution. Zero-valued fields fall back to the
// reference defaults when the PLT resolver runs; DefaultConfig returns one
// with those defaults applied via struct tags, and the CLI overlays its
// flag/env/config values on that (see cmd/symres).
type Config struct {
	// CandidateStride is the byte stride between candidate PLT stub offsets.
	CandidateStride uint64 `mapstructure:"candidate_stride" default:"4"`
	// PerCandidateTimeoutMS bounds how long a single candidate may run before
	// being treated as TIMEOUT.
	PerCandidateTimeoutMS uint64 `mapstructure:"per_candidate_timeout_ms" default:"1000"`
	// PageSize is the page granularity used to align the PLT section's
	// mapped memory range.
	PageSize uint64 `mapstructure:"page_size" default:"4096"`
}

// DefaultConfig returns the reference configuration:
// { candidate_stride: 4, per_candidate_timeout_ms: 1000, page_size: 4096 }.
func DefaultConfig() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}
