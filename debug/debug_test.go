package debug

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"schrodinger/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSet 三点网格上的两个态
func testSet(c types.Constants, n int) *types.WavefunctionSet {
	set := &types.WavefunctionSet{Z: make([]float64, n), V: make([]float64, n)}
	psi1, psi2 := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		set.Z[i] = float64(i) * 2 * c.Angstrom
		if i < n/3 || i >= 2*n/3 {
			set.V[i] = c.FromMeV(100)
		}
		psi1[i] = 1e4
		psi2[i] = -1e4
	}
	set.States = []types.State{
		{Energy: c.FromMeV(20), Psi: psi1},
		{Energy: c.FromMeV(61.356), Psi: psi2},
	}
	return set
}

func TestRecord(t *testing.T) {
	c := types.DefaultConstants
	r := NewRecord(c, 8)
	var _ types.Debug = r
	r.Update(0, testSet(c, 30))
	r.Update(5, testSet(c, 30))

	// 两端各裁去 2 个点
	require.Len(t, r.Z, 26)
	assert.Equal(t, 4.0, r.Z[0])
	require.Len(t, r.Frames, 2)
	f := r.Last()
	assert.Equal(t, 5.0, f.K)
	assert.Len(t, f.V, 26)
	assert.InDelta(t, 100, f.V[0], 1e-9)
	assert.InDelta(t, 20, f.Energies[0], 1e-9)
	require.Len(t, f.Transitions, 1)
	assert.InDelta(t, 10, f.Transitions[0], 1e-9)
	// 1e3·|ψ|²·Å + E
	assert.InDelta(t, 20+WavefunctionScale*1e8*c.Angstrom, f.Psi[0][0], 1e-9)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	var back Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, r.Z, back.Z)
	assert.Len(t, back.Frames, 2)
	assert.Nil(t, NewRecord(c, 0).Last())
}

func TestRecordNoPadding(t *testing.T) {
	c := types.DefaultConstants
	r := NewRecord(c, 0)
	r.Update(0, testSet(c, 9))
	assert.Len(t, r.Z, 9)
	r = NewRecord(c, 1000)
	r.Update(0, testSet(c, 9))
	assert.Len(t, r.Z, 9)
}

func TestCharts(t *testing.T) {
	c := types.DefaultConstants
	ch := NewCharts(NewRecord(c, 0))
	var _ types.Debug = ch
	var buf bytes.Buffer
	assert.Error(t, ch.Render(&buf))

	ch.Update(0, testSet(c, 30))
	ch.Update(2, testSet(c, 30))
	buf.Reset()
	require.NoError(t, ch.Render(&buf))
	html := buf.String()
	assert.True(t, strings.Contains(html, "echarts"))
	assert.Contains(t, html, "E2")
	assert.Contains(t, html, "K [kV/cm]")

	rec := httptest.NewRecorder()
	ch.Handler(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 200, rec.Code)
}

func TestPlot(t *testing.T) {
	c := types.DefaultConstants
	p := NewPlot(NewRecord(c, 0))
	var _ types.Debug = p
	var buf bytes.Buffer
	assert.Error(t, p.Render(&buf))

	p.Update(0, testSet(c, 30))
	require.NoError(t, p.Render(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}
