package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	for range 16 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestNewSeedIsNonNegative(t *testing.T) {
	t.Parallel()
	for range 8 {
		assert.GreaterOrEqual(t, NewSeed(), int64(0))
	}
}
