// Package sweep 在一组电场值上并行求解同一结构
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"schrodinger/grid"
	"schrodinger/solver"
	"schrodinger/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Point 单个电场值的求解结果
type Point struct {
	K   float64                // 电场 [kV/cm]
	Set *types.WavefunctionSet // 失败时为空
	Err error
}

// Range 生成 [start, stop] 内以 step 为步长的电场序列
func Range(start, stop, step float64) ([]float64, error) {
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("sweep step %g: %w", step, types.ErrMalformedInput)
	}
	span := (stop - start) / step
	if span < 0 || math.IsNaN(span) {
		return nil, fmt.Errorf("sweep %g..%g by %g: %w", start, stop, step, types.ErrMalformedInput)
	}
	n := int(math.Floor(span+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

// Sweeper 电场扫描
type Sweeper struct {
	Grid    *grid.Grid // 基准网格, 每个点复制后修改电场
	Method  types.Method
	Type    types.NonParabolicity
	NE      int
	Workers int // 0 为 GOMAXPROCS
	Options []solver.Option
	Log     *zap.Logger
	Metrics *Metrics
	Debug   types.Debug // 按电场顺序接收成功的结果
}

func (s *Sweeper) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Solve 在电场 k 下求解
func (s *Sweeper) Solve(k float64) (*types.WavefunctionSet, error) {
	g := s.Grid.Clone()
	g.SetK(k)
	start := time.Now()
	set, err := solver.Solve(g, s.Method, s.Type, s.NE, s.Options...)
	s.Metrics.observe(s.Method, s.Type, time.Since(start), set, err)
	return set, err
}

// Run 并行求解全部电场值, 结果与 ks 顺序一致
// 单点失败记录在 Point.Err 中, 仅在 ctx 取消时返回错误
func (s *Sweeper) Run(ctx context.Context, ks []float64) ([]Point, error) {
	if s.Grid == nil {
		return nil, fmt.Errorf("sweep: nil grid: %w", types.ErrInvalidGrid)
	}
	log := s.logger()
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	points := make([]Point, len(ks))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, k := range ks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := s.Solve(k)
			points[i] = Point{K: k, Set: set, Err: err}
			if err != nil {
				log.Error("sweep point failed", zap.Float64("k", k), zap.Error(err))
				return nil
			}
			log.Debug("sweep point solved", zap.Float64("k", k), zap.Int("states", set.Len()))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if s.Debug != nil {
		for _, p := range points {
			if p.Set != nil {
				s.Debug.Update(p.K, p.Set)
			}
		}
	}
	return points, nil
}
