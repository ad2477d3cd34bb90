// Package config 求解参数: 配置文件, 环境变量 SCHRODINGER_* 与命令行参数
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"schrodinger/load"
	"schrodinger/material"
	"schrodinger/types"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "SCHRODINGER"

// Config 求解配置
type Config struct {
	// Material 合金体系名称
	Material string `mapstructure:"material" yaml:"material"`
	// Method 数值方法 FDM/TMM
	Method string `mapstructure:"method" yaml:"method"`
	// Type 非抛物性模型
	Type string `mapstructure:"type" yaml:"type"`
	// Structure 层描述文件, Layers 不为空时忽略
	Structure string      `mapstructure:"structure" yaml:"structure,omitempty"`
	Layers    [][]float64 `mapstructure:"layers" yaml:"layers,omitempty"`

	Dz      float64 `mapstructure:"dz" yaml:"dz"`           // 网格间距 [Å]
	K       float64 `mapstructure:"k" yaml:"k"`             // 电场 [kV/cm]
	NstMax  int     `mapstructure:"nstmax" yaml:"nstmax"`   // 最多求解态数量, 0 不限
	Padding float64 `mapstructure:"padding" yaml:"padding"` // 显示时两端裁去的长度 [Å]
	DE      float64 `mapstructure:"de" yaml:"de"`           // TMM 扫描步长 [meV]

	Tolerance  float64 `mapstructure:"tolerance" yaml:"tolerance"`   // TMM 细化容差 [meV]
	DenseLimit int     `mapstructure:"denselimit" yaml:"denselimit"` // Kane 稠密分解上限

	Sweep  Sweep  `mapstructure:"sweep" yaml:"sweep"`
	Output Output `mapstructure:"output" yaml:"output"`
	Log    Log    `mapstructure:"log" yaml:"log"`

	explicit map[string]bool
}

// Sweep 电场扫描, Step 为零时不扫描
type Sweep struct {
	Start   float64 `mapstructure:"start" yaml:"start"`
	Stop    float64 `mapstructure:"stop" yaml:"stop"`
	Step    float64 `mapstructure:"step" yaml:"step"`
	Workers int     `mapstructure:"workers" yaml:"workers"`
}

// Enabled 是否执行扫描
func (s Sweep) Enabled() bool { return s.Step != 0 }

// Output 输出文件, 为空时不输出
type Output struct {
	HTML    string `mapstructure:"html" yaml:"html,omitempty"`
	PNG     string `mapstructure:"png" yaml:"png,omitempty"`
	JSON    string `mapstructure:"json" yaml:"json,omitempty"`
	DB      string `mapstructure:"db" yaml:"db,omitempty"`
	Metrics string `mapstructure:"metrics" yaml:"metrics,omitempty"`
}

// Log 日志配置
type Log struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Material:   "AlGaAs",
		Method:     "TMM",
		Type:       "Parabolic",
		Dz:         0.6,
		NstMax:     10,
		DE:         types.DefaultDE,
		Tolerance:  types.Tolerance,
		DenseLimit: types.DenseLimit,
		Log:        Log{Level: "info"},
	}
}

// flagKeys 命令行参数与配置键的对应
var flagKeys = map[string]string{
	"material":    "material",
	"method":      "method",
	"type":        "type",
	"structure":   "structure",
	"dz":          "dz",
	"k":           "k",
	"nst-max":     "nstmax",
	"padding":     "padding",
	"de":          "de",
	"tolerance":   "tolerance",
	"dense-limit": "denselimit",
	"sweep-start": "sweep.start",
	"sweep-stop":  "sweep.stop",
	"sweep-step":  "sweep.step",
	"workers":     "sweep.workers",
	"html":        "output.html",
	"png":         "output.png",
	"json":        "output.json",
	"db":          "output.db",
	"metrics":     "output.metrics",
	"log-level":   "log.level",
	"log-dev":     "log.development",
}

// Flags 注册命令行参数
func Flags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("material", d.Material, "alloy system ("+strings.Join(material.Names(), ", ")+")")
	fs.String("method", d.Method, "numerical method (FDM, TMM)")
	fs.String("type", d.Type, "non-parabolicity (Parabolic, Taylor, Kane, Ekenberg)")
	fs.StringP("structure", "s", "", "layer file (text or yaml)")
	fs.Float64("dz", d.Dz, "grid spacing [Å]")
	fs.Float64("k", 0, "electric field [kV/cm]")
	fs.IntP("nst-max", "n", d.NstMax, "maximum number of states, 0 for all")
	fs.Float64("padding", 0, "length trimmed from both ends on display [Å]")
	fs.Float64("de", d.DE, "TMM scan step [meV]")
	fs.Float64("tolerance", d.Tolerance, "TMM refinement tolerance [meV]")
	fs.Int("dense-limit", d.DenseLimit, "largest Kane block matrix solved densely")
	fs.Float64("sweep-start", 0, "field sweep start [kV/cm]")
	fs.Float64("sweep-stop", 0, "field sweep stop [kV/cm]")
	fs.Float64("sweep-step", 0, "field sweep step [kV/cm], 0 disables the sweep")
	fs.Int("workers", 0, "sweep workers, 0 for GOMAXPROCS")
	fs.String("html", "", "write charts to this HTML file")
	fs.String("png", "", "write band diagram to this PNG file")
	fs.String("json", "", "write the result record to this JSON file")
	fs.String("db", "", "store results in this sqlite database")
	fs.String("metrics", "", "write prometheus metrics to this text file")
	fs.String("log-level", d.Log.Level, "log level")
	fs.Bool("log-dev", false, "console log output")
}

// Load 读取配置, 优先级: 命令行 > 环境变量 > 配置文件 > 默认值
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("material", d.Material)
	v.SetDefault("method", d.Method)
	v.SetDefault("type", d.Type)
	v.SetDefault("structure", "")
	v.SetDefault("dz", d.Dz)
	v.SetDefault("k", d.K)
	v.SetDefault("nstmax", d.NstMax)
	v.SetDefault("padding", d.Padding)
	v.SetDefault("de", d.DE)
	v.SetDefault("tolerance", d.Tolerance)
	v.SetDefault("denselimit", d.DenseLimit)
	v.SetDefault("sweep.start", 0.0)
	v.SetDefault("sweep.stop", 0.0)
	v.SetDefault("sweep.step", 0.0)
	v.SetDefault("sweep.workers", 0)
	for _, k := range []string{"html", "png", "json", "db", "metrics"} {
		v.SetDefault("output."+k, "")
	}
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %v: %w", path, err, types.ErrMalformedInput)
		}
	}
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %v: %w", err, types.ErrMalformedInput)
	}
	cfg.explicit = map[string]bool{}
	for _, key := range headerKeys {
		_, env := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(key))
		cfg.explicit[key] = v.InConfig(key) || env
	}
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				cfg.explicit[key] = true
			}
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置
func (c *Config) Validate() error {
	var errs []error
	if _, err := material.Get(c.Material); err != nil {
		errs = append(errs, err)
	}
	method, err := types.ParseMethod(c.Method)
	if err != nil {
		errs = append(errs, err)
	}
	kind, err := types.ParseNonParabolicity(c.Type)
	if err != nil {
		errs = append(errs, err)
	}
	if method == types.FDM && kind == types.Ekenberg {
		errs = append(errs, fmt.Errorf("FDM with Ekenberg: %w", types.ErrUnsupportedCombination))
	}
	if c.Structure == "" && len(c.Layers) == 0 {
		errs = append(errs, fmt.Errorf("no structure given: %w", types.ErrMalformedInput))
	}
	if !(c.Dz > 0) || math.IsInf(c.Dz, 0) {
		errs = append(errs, fmt.Errorf("dz must be positive, got %g: %w", c.Dz, types.ErrInvalidGrid))
	}
	if c.NstMax < 0 {
		errs = append(errs, fmt.Errorf("nstmax must be >= 0, got %d: %w", c.NstMax, types.ErrMalformedInput))
	}
	if c.Padding < 0 {
		errs = append(errs, fmt.Errorf("padding must be >= 0, got %g: %w", c.Padding, types.ErrMalformedInput))
	}
	if !(c.DE > 0) {
		errs = append(errs, fmt.Errorf("de must be positive, got %g: %w", c.DE, types.ErrMalformedInput))
	}
	if !(c.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %g: %w", c.Tolerance, types.ErrMalformedInput))
	}
	if c.DenseLimit < 0 {
		errs = append(errs, fmt.Errorf("denselimit must be >= 0, got %d: %w", c.DenseLimit, types.ErrMalformedInput))
	}
	if s := c.Sweep; s.Enabled() {
		if (s.Stop-s.Start)/s.Step < 0 {
			errs = append(errs, fmt.Errorf("sweep step %g does not reach %g from %g: %w", s.Step, s.Stop, s.Start, types.ErrMalformedInput))
		}
		if s.Workers < 0 {
			errs = append(errs, fmt.Errorf("sweep workers must be >= 0, got %d: %w", s.Workers, types.ErrMalformedInput))
		}
	}
	return errors.Join(errs...)
}

// Solver 解析后的方法与模型
func (c *Config) Solver() (types.Method, types.NonParabolicity, error) {
	method, err := types.ParseMethod(c.Method)
	if err != nil {
		return method, types.TypeUnknown, err
	}
	kind, err := types.ParseNonParabolicity(c.Type)
	return method, kind, err
}

// headerKeys 层描述文件中可出现的设置指令
var headerKeys = []string{"material", "dz", "k", "padding"}

// ReadStructure 读取层结构
// 文件中的 .material .dz .k .padding 指令仅在配置未显式给出时生效
func (c *Config) ReadStructure() (*load.Structure, error) {
	if len(c.Layers) > 0 {
		comp, err := load.FromArray(c.Layers)
		if err != nil {
			return nil, err
		}
		return &load.Structure{Header: map[string]string{}, Composition: comp}, nil
	}
	st, err := load.File(c.Structure)
	if err != nil {
		return nil, err
	}
	if err := c.applyHeader(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (c *Config) applyHeader(st *load.Structure) error {
	if !c.explicit["material"] {
		c.Material = st.Text("material", c.Material)
	}
	for key, dst := range map[string]*float64{"dz": &c.Dz, "k": &c.K, "padding": &c.Padding} {
		if c.explicit[key] {
			continue
		}
		v, err := st.Float(key, *dst)
		if err != nil {
			return err
		}
		*dst = v
	}
	return c.Validate()
}
