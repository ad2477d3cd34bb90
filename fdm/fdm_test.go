package fdm

import (
	"errors"
	"math"
	"testing"

	"schrodinger/band"
	"schrodinger/grid"
	"schrodinger/maths"
	"schrodinger/material"
	"schrodinger/tmm"
	"schrodinger/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrid(t testing.TB, comp types.Composition) *grid.Grid {
	t.Helper()
	g, err := grid.New(comp, 1, material.AlGaAs)
	require.NoError(t, err)
	return g
}

var (
	wide   = types.Composition{{Thickness: 150, Alloy: 0.2}, {Thickness: 80, Alloy: 0}, {Thickness: 150, Alloy: 0.2}}
	small  = types.Composition{{Thickness: 50, Alloy: 0.2}, {Thickness: 40, Alloy: 0}, {Thickness: 50, Alloy: 0.2}}
	medium = types.Composition{{Thickness: 100, Alloy: 0.2}, {Thickness: 60, Alloy: 0}, {Thickness: 100, Alloy: 0.2}}
)

func meV(g *grid.Grid, set *types.WavefunctionSet) []float64 { return set.EnergiesMeV(g.Const) }

// TestSolveWell 80Å 阱的前两个能级
func TestSolveWell(t *testing.T) {
	tests := []struct {
		kind    types.NonParabolicity
		e0, e1  float64
		backend string
		tolMeV  float64
	}{
		{types.Parabolic, 38.7152, 142.900, "dense", 0.01},
		{types.Taylor, 39.1250, 137.159, "dense-generalized", 0.01},
		{types.Kane, 39.2082, 137.701, "block-shift-invert", 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			g := newGrid(t, wide)
			e, err := New(g, tt.kind, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.backend, e.Operator().Backend())
			assert.Equal(t, g.NZ(), e.Operator().Dim())
			set, err := e.Solve()
			require.NoError(t, err)
			require.GreaterOrEqual(t, set.Len(), 2)
			got := meV(g, set)
			assert.InDelta(t, tt.e0, got[0], tt.tolMeV)
			assert.InDelta(t, tt.e1, got[1], tt.tolMeV)
			assert.Equal(t, types.FDM, set.Method)
			assert.Equal(t, tt.kind, set.Type)
		})
	}
}

// TestStateProperties 能量有序且在势阱范围内, 波函数归一
func TestStateProperties(t *testing.T) {
	for _, kind := range []types.NonParabolicity{types.Parabolic, types.Taylor, types.Kane} {
		g := newGrid(t, small)
		lo, hi := g.Range()
		e, err := New(g, kind, 0)
		require.NoError(t, err)
		set, err := e.Solve()
		require.NoError(t, err, kind.String())
		prev := math.Inf(-1)
		for i, s := range set.States {
			assert.Greater(t, s.Energy, lo, "%s state %d", kind, i)
			assert.Less(t, s.Energy, hi, "%s state %d", kind, i)
			assert.Greater(t, s.Energy, prev)
			prev = s.Energy
			require.Len(t, s.Psi, g.NZ())
			assert.InDelta(t, 1, maths.Norm2(g.Z, s.Psi), 1e-6)
			var big float64
			for _, v := range s.Psi {
				if math.Abs(v) > math.Abs(big) {
					big = v
				}
			}
			assert.Greater(t, big, 0.0)
		}
	}
}

// TestKaneBackends 稠密与移位求逆结果一致
func TestKaneBackends(t *testing.T) {
	g := newGrid(t, medium)
	iter, err := New(g, types.Kane, 0)
	require.NoError(t, err)
	require.Equal(t, "block-shift-invert", iter.Operator().Backend())
	full, err := New(g, types.Kane, 0, WithDenseLimit(4*g.NZ()))
	require.NoError(t, err)
	require.Equal(t, "block-dense", full.Operator().Backend())

	a, err := iter.Solve()
	require.NoError(t, err)
	b, err := full.Solve()
	require.NoError(t, err)
	require.Equal(t, b.Len(), a.Len())
	ea, eb := meV(g, a), meV(g, b)
	for i := range ea {
		assert.InDelta(t, eb[i], ea[i], 1e-4, "state %d", i)
	}
	// 同一本征矢量归一化后相同
	for i := range a.States {
		var d float64
		for j := range a.States[i].Psi {
			d = math.Max(d, math.Abs(a.States[i].Psi[j]-b.States[i].Psi[j]))
		}
		assert.Less(t, d, 1e-3*maxAbs(b.States[i].Psi), "state %d", i)
	}
}

// TestKaneManyStates 态数量超过单个窗口时仍从势阱底开始
func TestKaneManyStates(t *testing.T) {
	g := newGrid(t, types.Composition{{Thickness: 100, Alloy: 1}, {Thickness: 800, Alloy: 0}, {Thickness: 100, Alloy: 1}})
	model, err := band.New(types.Kane, g)
	require.NoError(t, err)
	ref, err := tmm.New(g, model, 3)
	require.NoError(t, err)
	want, err := ref.Solve()
	require.NoError(t, err)
	require.Equal(t, 3, want.Len())
	wantMeV := meV(g, want)
	assert.Less(t, wantMeV[0], 2.0)

	e, err := New(g, types.Kane, 3)
	require.NoError(t, err)
	require.Equal(t, "block-shift-invert", e.Operator().Backend())
	set, err := e.Solve()
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	assert.InDeltaSlice(t, wantMeV, meV(g, set), 0.05)

	e, err = New(g, types.Kane, 0)
	require.NoError(t, err)
	all, err := e.Solve()
	require.NoError(t, err)
	// 约 42 个束缚态, 远多于单个窗口
	assert.Greater(t, all.Len(), 36)
	got := meV(g, all)
	assert.InDeltaSlice(t, wantMeV, got[:3], 0.05)
	lo, hi := g.Range()
	for i, s := range all.States {
		assert.Greater(t, s.Energy, lo)
		assert.Less(t, s.Energy, hi)
		if i > 0 {
			assert.Greater(t, got[i]-got[i-1], 0.1, "state %d", i)
		}
	}
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

// TestShiftInvert 结构化求逆满足 (A-σI)·y = b
func TestShiftInvert(t *testing.T) {
	g := newGrid(t, small)
	e, err := New(g, types.Kane, 0)
	require.NoError(t, err)
	blk := e.Operator().(*block)
	op, err := newShiftInvert(blk.rows, blk.sigma)
	require.NoError(t, err)

	n := op.Dim()
	b := make([]float64, n)
	for i := range b {
		b[i] = math.Sin(float64(i) * 0.37)
	}
	y := make([]float64, n)
	require.NoError(t, op.Apply(y, b))

	a := blk.Dense()
	for i := 0; i < n; i++ {
		s := -blk.sigma * y[i]
		scale := math.Abs(s)
		for j := 0; j < n; j++ {
			s += a.At(i, j) * y[j]
			scale += math.Abs(a.At(i, j) * y[j])
		}
		assert.InDelta(t, b[i], s, 1e-8*scale+1e-10, "row %d", i)
	}
}

// TestShiftInvertNonFinite 非有限输入报告奇异
func TestShiftInvertNonFinite(t *testing.T) {
	g := newGrid(t, small)
	e, err := New(g, types.Kane, 0)
	require.NoError(t, err)
	blk := e.Operator().(*block)
	op, err := newShiftInvert(blk.rows, blk.sigma)
	require.NoError(t, err)
	n := op.Dim()
	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		src := make([]float64, n)
		src[n-1] = bad
		err := op.Apply(make([]float64, n), src)
		assert.True(t, errors.Is(err, types.ErrSingularMatrix), "%g", bad)
	}
}

// TestTruncate nE 限制返回数量
func TestTruncate(t *testing.T) {
	g := newGrid(t, wide)
	e, err := New(g, types.Parabolic, 1)
	require.NoError(t, err)
	set, err := e.Solve()
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.InDelta(t, 38.7152, meV(g, set)[0], 0.01)
}

// TestIdempotent 重复求解结果相同
func TestIdempotent(t *testing.T) {
	g := newGrid(t, small)
	e, err := New(g, types.Taylor, 0)
	require.NoError(t, err)
	a, err := e.Solve()
	require.NoError(t, err)
	b, err := e.Solve()
	require.NoError(t, err)
	assert.Equal(t, a.Energies(), b.Energies())
}

// TestErrors 不支持的组合与非法参数
func TestErrors(t *testing.T) {
	g := newGrid(t, small)
	_, err := New(g, types.Ekenberg, 0)
	assert.True(t, errors.Is(err, types.ErrUnsupportedCombination))
	_, err = New(g, types.TypeUnknown, 0)
	assert.True(t, errors.Is(err, types.ErrUnsupportedCombination))
	_, err = New(nil, types.Parabolic, 0)
	assert.True(t, errors.Is(err, types.ErrInvalidGrid))
	_, err = New(g, types.Parabolic, -1)
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
}

// TestNoBoundStates 无势阱时没有束缚态
func TestNoBoundStates(t *testing.T) {
	g := newGrid(t, types.Composition{{Thickness: 60, Alloy: 0.2}})
	e, err := New(g, types.Parabolic, 0)
	require.NoError(t, err)
	_, err = e.Solve()
	assert.True(t, errors.Is(err, types.ErrNoBoundStates))
}

func BenchmarkKaneShiftInvert(b *testing.B) {
	g := newGrid(b, medium)
	e, err := New(g, types.Kane, 0)
	require.NoError(b, err)
	for i := 0; i < b.N; i++ {
		if _, err := e.Solve(); err != nil {
			b.Fatal(err)
		}
	}
}
