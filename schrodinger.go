// Package schrodinger 求解异质结构一维薛定谔方程的束缚态
//
// 按配置读取层结构, 构建网格, 在单个电场或电场扫描下求解,
// 并输出能级表, HTML 图表, PNG 图像, JSON 记录, sqlite 数据库与指标文件。
package schrodinger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"schrodinger/config"
	"schrodinger/debug"
	"schrodinger/grid"
	"schrodinger/load"
	"schrodinger/material"
	"schrodinger/solver"
	"schrodinger/store"
	"schrodinger/sweep"
	"schrodinger/types"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Simulator 一次求解任务
type Simulator struct {
	Config    *config.Config
	Structure *load.Structure
	Grid      *grid.Grid
	Record    *debug.Record
	Registry  *prometheus.Registry

	method  types.Method
	kind    types.NonParabolicity
	log     *zap.Logger
	metrics *sweep.Metrics
}

// New 按配置初始化
func New(cfg *config.Config, log *zap.Logger) (*Simulator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	method, kind, err := cfg.Solver()
	if err != nil {
		return nil, err
	}
	st, err := cfg.ReadStructure()
	if err != nil {
		return nil, err
	}
	mat, err := material.Get(cfg.Material)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(st.Composition, cfg.Dz, mat, grid.WithK(cfg.K), grid.WithDE(cfg.DE))
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	m, err := sweep.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	log.Info("structure loaded",
		zap.String("material", mat.Name),
		zap.Int("layers", len(st.Composition)),
		zap.Float64("length", st.Composition.Length()),
		zap.Int("nz", g.NZ()),
	)
	return &Simulator{
		Config:    cfg,
		Structure: st,
		Grid:      g,
		Record:    debug.NewRecord(g.Const, cfg.Padding),
		Registry:  reg,
		method:    method,
		kind:      kind,
		log:       log,
		metrics:   m,
	}, nil
}

// Fields 需要求解的电场值 [kV/cm]
func (s *Simulator) Fields() ([]float64, error) {
	if !s.Config.Sweep.Enabled() {
		return []float64{s.Config.K}, nil
	}
	sw := s.Config.Sweep
	return sweep.Range(sw.Start, sw.Stop, sw.Step)
}

// Run 求解全部电场值
// 单个电场求解失败时返回该错误, 扫描中的失败点记录在 Point.Err
func (s *Simulator) Run(ctx context.Context) ([]sweep.Point, error) {
	ks, err := s.Fields()
	if err != nil {
		return nil, err
	}
	sw := &sweep.Sweeper{
		Grid:    s.Grid,
		Method:  s.method,
		Type:    s.kind,
		NE:      s.Config.NstMax,
		Workers: s.Config.Sweep.Workers,
		Options: []solver.Option{
			solver.WithLogger(s.log),
			solver.WithTolerance(s.Config.Tolerance),
			solver.WithDenseLimit(s.Config.DenseLimit),
		},
		Log:     s.log,
		Metrics: s.metrics,
		Debug:   s.Record,
	}
	points, err := sw.Run(ctx, ks)
	if err != nil {
		return nil, err
	}
	if !s.Config.Sweep.Enabled() && points[0].Err != nil {
		return points, points[0].Err
	}
	return points, nil
}

// Report 打印能级与跃迁频率
func (s *Simulator) Report(w io.Writer, points []sweep.Point) {
	c := s.Grid.Const
	fmt.Fprintf(w, "%s %s, %s, nz=%d\n", s.method, s.kind, s.Config.Material, s.Grid.NZ())
	for _, p := range points {
		fmt.Fprintf(w, "K = %g kV/cm\n", p.K)
		if p.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", p.Err)
			continue
		}
		for i, e := range p.Set.EnergiesMeV(c) {
			fmt.Fprintf(w, "  E%-3d %12.4f meV\n", i+1, e)
		}
		for i, f := range p.Set.TransitionsTHz(c) {
			fmt.Fprintf(w, "  %d->%d %11.4f THz\n", i+2, i+1, f)
		}
		if n := len(p.Set.Skipped); n > 0 {
			fmt.Fprintf(w, "  skipped %d candidates\n", n)
		}
	}
}

// create 创建输出文件及所在目录
func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func render(path string, d types.Debug) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := d.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// Write 写入配置中给出的全部输出文件
func (s *Simulator) Write(ctx context.Context, points []sweep.Point) error {
	out := s.Config.Output
	if s.Record.Last() != nil {
		for path, d := range map[string]types.Debug{
			out.JSON: s.Record,
			out.HTML: debug.NewCharts(s.Record),
			out.PNG:  debug.NewPlot(s.Record),
		} {
			if path == "" {
				continue
			}
			if err := render(path, d); err != nil {
				return err
			}
			s.log.Info("output written", zap.String("path", path))
		}
	}
	if out.DB != "" {
		id, err := s.Save(ctx, out.DB, points)
		if err != nil {
			return err
		}
		s.log.Info("run saved", zap.String("path", out.DB), zap.Int64("run", id))
	}
	if out.Metrics != "" {
		if err := os.MkdirAll(filepath.Dir(out.Metrics), 0o750); err != nil {
			return err
		}
		if err := prometheus.WriteToTextfile(out.Metrics, s.Registry); err != nil {
			return err
		}
		s.log.Info("metrics written", zap.String("path", out.Metrics))
	}
	return nil
}

// Save 保存到 sqlite, 返回运行编号
func (s *Simulator) Save(ctx context.Context, path string, points []sweep.Point) (int64, error) {
	db, err := store.Open(path)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	raw, err := json.Marshal(s.Config)
	if err != nil {
		return 0, err
	}
	results := make([]store.Result, 0, len(points))
	for _, p := range points {
		results = append(results, store.Result{K: p.K, Set: p.Set})
	}
	return db.SaveRun(ctx, store.Run{Method: s.method, Type: s.kind, Config: raw}, results)
}
