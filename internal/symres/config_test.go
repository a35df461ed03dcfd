package symres

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, uint64(4), cfg.CandidateStride)
	require.Equal(t, uint64(1000), cfg.PerCandidateTimeoutMS)
	require.Equal(t, uint64(4096), cfg.PageSize)
}

func TestDefaultConfigIsStable(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	require.Equal(t, a, b)
}
