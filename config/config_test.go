package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"schrodinger/types"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

const yamlConfig = `
material: AlGaAs
method: FDM
type: Kane
dz: 1
nstmax: 3
layers:
  - [150, 0.2]
  - [80, 0]
  - [150, 0.2]
sweep:
  start: 0
  stop: 10
  step: 2.5
  workers: 2
output:
  html: out.html
`

// TestLoadFile 配置文件
func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "run.yaml", yamlConfig), nil)
	require.NoError(t, err)
	assert.Equal(t, "FDM", cfg.Method)
	assert.Equal(t, "Kane", cfg.Type)
	assert.Equal(t, 1.0, cfg.Dz)
	assert.Equal(t, 3, cfg.NstMax)
	assert.Equal(t, [][]float64{{150, 0.2}, {80, 0}, {150, 0.2}}, cfg.Layers)
	assert.True(t, cfg.Sweep.Enabled())
	assert.Equal(t, 2.5, cfg.Sweep.Step)
	assert.Equal(t, 2, cfg.Sweep.Workers)
	assert.Equal(t, "out.html", cfg.Output.HTML)
	assert.Equal(t, types.DefaultDE, cfg.DE)
	assert.Equal(t, "info", cfg.Log.Level)

	method, kind, err := cfg.Solver()
	require.NoError(t, err)
	assert.Equal(t, types.FDM, method)
	assert.Equal(t, types.Kane, kind)

	st, err := cfg.ReadStructure()
	require.NoError(t, err)
	assert.Len(t, st.Composition, 3)
	assert.InDelta(t, 380, st.Composition.Length(), 1e-12)
}

// TestFlagsOverride 命令行参数优先
func TestFlagsOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--method", "tmm", "--type", "ekenberg", "-n", "0", "--k", "5"}))
	cfg, err := Load(writeFile(t, "run.yaml", yamlConfig), fs)
	require.NoError(t, err)
	assert.Equal(t, "tmm", cfg.Method)
	assert.Equal(t, "ekenberg", cfg.Type)
	assert.Equal(t, 0, cfg.NstMax)
	assert.Equal(t, 5.0, cfg.K)
	assert.Equal(t, 1.0, cfg.Dz)
}

// TestEnv 环境变量
func TestEnv(t *testing.T) {
	t.Setenv("SCHRODINGER_DZ", "0.25")
	t.Setenv("SCHRODINGER_LOG_LEVEL", "debug")
	cfg, err := Load(writeFile(t, "run.yaml", yamlConfig), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Dz)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestHeader 层描述文件中的指令
func TestHeader(t *testing.T) {
	layers := writeFile(t, "well.txt", ".material AlGaSb\n.dz 0.5\n.k 3\n100 0.2\n50 0\n100 0.2\n")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"-s", layers, "--dz", "1"}))
	cfg, err := Load("", fs)
	require.NoError(t, err)
	st, err := cfg.ReadStructure()
	require.NoError(t, err)
	assert.Len(t, st.Composition, 3)
	assert.Equal(t, "AlGaSb", cfg.Material)
	assert.Equal(t, 1.0, cfg.Dz)
	assert.Equal(t, 3.0, cfg.K)
}

// TestValidate 非法配置
func TestValidate(t *testing.T) {
	base := Default()
	base.Layers = [][]float64{{50, 0.2}, {30, 0}, {50, 0.2}}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"material", func(c *Config) { c.Material = "Unobtainium" }, types.ErrUnknownMaterial},
		{"method", func(c *Config) { c.Method = "FEM" }, types.ErrUnsupportedCombination},
		{"ekenberg fdm", func(c *Config) { c.Method, c.Type = "FDM", "Ekenberg" }, types.ErrUnsupportedCombination},
		{"no structure", func(c *Config) { c.Layers = nil }, types.ErrMalformedInput},
		{"dz", func(c *Config) { c.Dz = 0 }, types.ErrInvalidGrid},
		{"nstmax", func(c *Config) { c.NstMax = -1 }, types.ErrMalformedInput},
		{"de", func(c *Config) { c.DE = 0 }, types.ErrMalformedInput},
		{"tolerance", func(c *Config) { c.Tolerance = -1 }, types.ErrMalformedInput},
		{"sweep direction", func(c *Config) { c.Sweep = Sweep{Start: 0, Stop: 10, Step: -1} }, types.ErrMalformedInput},
	}
	for _, tt := range tests {
		cfg := base
		tt.modify(&cfg)
		err := cfg.Validate()
		assert.True(t, errors.Is(err, tt.target), "%s: %v", tt.name, err)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
}
