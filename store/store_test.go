package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"schrodinger/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	ctx := context.Background()

	set := &types.WavefunctionSet{States: []types.State{
		{Energy: 1e-21, Psi: []float64{0, 1, 0}},
		{Energy: 2e-21, Psi: []float64{0, -1, 0.5}},
	}}
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := Run{Created: created, Method: types.TMM, Type: types.Kane, Config: json.RawMessage(`{"dz":1}`)}
	id, err := s.SaveRun(ctx, run, []Result{{K: 5, Set: set}, {K: 0, Set: set}, {K: 10}})
	require.NoError(t, err)
	id2, err := s.SaveRun(ctx, Run{Method: types.FDM, Type: types.Parabolic}, nil)
	require.NoError(t, err)
	assert.Greater(t, id2, id)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id, runs[0].ID)
	assert.True(t, created.Equal(runs[0].Created))
	assert.Equal(t, types.TMM, runs[0].Method)
	assert.Equal(t, types.Kane, runs[0].Type)
	assert.JSONEq(t, `{"dz":1}`, string(runs[0].Config))
	assert.JSONEq(t, `{}`, string(runs[1].Config))

	states, err := s.States(ctx, id)
	require.NoError(t, err)
	require.Len(t, states, 4)
	assert.Equal(t, 0.0, states[0].K)
	assert.Equal(t, 5.0, states[2].K)
	assert.Equal(t, 1, states[1].Index)
	assert.Equal(t, 2e-21, states[1].Energy)
	assert.Equal(t, []float64{0, -1, 0.5}, states[1].Psi)

	states, err = s.States(ctx, id2)
	require.NoError(t, err)
	assert.Empty(t, states)
	require.NoError(t, s.Close())

	// 重新打开后数据仍在
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err = s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
