package material

import (
	"errors"
	"testing"

	"schrodinger/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGet 名称查找与未知体系
func TestGet(t *testing.T) {
	for _, name := range []string{"AlGaAs", "algaas", "InGaAs/InAlAs", "ingaas/gaassb", "AlGaSb"} {
		m, err := Get(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, m.Name)
	}
	_, err := Get("GaN")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnknownMaterial))
	assert.Len(t, Names(), 4)
}

// TestInterpolate 线性插值端点
func TestInterpolate(t *testing.T) {
	p := Parameter{Well: 0.067, Barr: 0.15}
	assert.Equal(t, 0.067, p.Interpolate(0))
	assert.InDelta(t, 0.15, p.Interpolate(1), 1e-15)
	assert.InDelta(t, 0.0836, p.Interpolate(0.2), 1e-12)
	assert.InDelta(t, 0.67*(2.777-1.424), AlGaAs.V.Interpolate(1), 1e-15)
}

// TestAlpha 非抛物性系数
func TestAlpha(t *testing.T) {
	assert.InDelta(t, 1/1.424, AlGaAs.KaneAlpha(0), 1e-12)
	for _, m := range table {
		for _, x := range []float64{0, 0.2, 0.5, 1} {
			a := m.EkenbergAlpha(x)
			assert.Greater(t, a, 0.0, m.Name)
			assert.Less(t, a, m.KaneAlpha(x), m.Name)
		}
	}
	assert.InDelta(t, 0.4698, AlGaAs.EkenbergAlpha(0), 1e-3)
}
