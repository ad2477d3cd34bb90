package schrodinger

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"schrodinger/config"
	"schrodinger/store"
	"schrodinger/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Method = "TMM"
	cfg.Type = "Parabolic"
	cfg.Dz = 1
	cfg.NstMax = 3
	cfg.Layers = [][]float64{{50, 0.2}, {40, 0}, {50, 0.2}}
	require.NoError(t, cfg.Validate())
	return &cfg
}

// TestRun 单个电场
func TestRun(t *testing.T) {
	sim, err := New(testConfig(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 140, sim.Grid.NZ())
	points, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	e := points[0].Set.EnergiesMeV(sim.Grid.Const)
	require.Len(t, e, 1)
	assert.InDelta(t, 83.8, e[0], 0.5)

	var buf bytes.Buffer
	sim.Report(&buf, points)
	assert.Contains(t, buf.String(), "K = 0 kV/cm")
	assert.Contains(t, buf.String(), "E1")
}

// TestSweepOutputs 扫描并写入全部输出
func TestSweepOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.NstMax = 1
	cfg.Sweep = config.Sweep{Start: 0, Stop: 4, Step: 2, Workers: 2}
	cfg.Output = config.Output{
		HTML:    filepath.Join(dir, "out", "band.html"),
		PNG:     filepath.Join(dir, "out", "band.png"),
		JSON:    filepath.Join(dir, "out", "band.json"),
		DB:      filepath.Join(dir, "runs.db"),
		Metrics: filepath.Join(dir, "metrics.prom"),
	}
	sim, err := New(cfg, nil)
	require.NoError(t, err)
	ks, err := sim.Fields()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4}, ks)

	ctx := context.Background()
	points, err := sim.Run(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for _, p := range points {
		require.NoError(t, p.Err)
	}
	assert.Len(t, sim.Record.Frames, 3)
	require.NoError(t, sim.Write(ctx, points))

	for _, path := range []string{cfg.Output.HTML, cfg.Output.PNG, cfg.Output.JSON, cfg.Output.Metrics} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.NotZero(t, info.Size(), path)
	}
	prom, err := os.ReadFile(cfg.Output.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "schrodinger_solves_total")

	db, err := store.Open(cfg.Output.DB)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, types.TMM, runs[0].Method)
	states, err := db.States(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, states, 3)
}

// TestRunErrors 单个电场的失败直接返回
func TestRunErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Layers = [][]float64{{60, 0.2}}
	sim, err := New(cfg, nil)
	require.NoError(t, err)
	_, err = sim.Run(context.Background())
	assert.True(t, errors.Is(err, types.ErrNoBoundStates))

	cfg = testConfig(t)
	cfg.Material = "Unobtainium"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
