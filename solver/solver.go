// Package solver 按方法与非抛物线模型创建求解引擎
package solver

import (
	"fmt"

	"schrodinger/band"
	"schrodinger/fdm"
	"schrodinger/grid"
	"schrodinger/tmm"
	"schrodinger/types"

	"go.uber.org/zap"
)

// Engine 束缚态求解引擎
type Engine interface {
	Solve() (*types.WavefunctionSet, error)
	Method() types.Method
	Type() types.NonParabolicity
}

type options struct {
	log        *zap.Logger
	tolMeV     float64
	maxIter    int
	denseLimit int
	seed       int64
}

// Option 求解配置
type Option func(*options)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// WithTolerance TMM 细化容差 [meV]
func WithTolerance(meV float64) Option { return func(o *options) { o.tolMeV = meV } }

// WithMaxIterations TMM 细化最大迭代次数
func WithMaxIterations(n int) Option { return func(o *options) { o.maxIter = n } }

// WithDenseLimit FDM Kane 块矩阵稠密分解上限
func WithDenseLimit(n int) Option { return func(o *options) { o.denseLimit = n } }

// WithSeed FDM 子空间迭代随机种子
func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

// New 创建求解引擎
// 有效组合: FDM × {Parabolic, Taylor, Kane}, TMM × 全部四种模型
func New(g *grid.Grid, method types.Method, kind types.NonParabolicity, nE int, opts ...Option) (Engine, error) {
	o := options{
		log:        zap.NewNop(),
		tolMeV:     types.Tolerance,
		maxIter:    types.MaxIterations,
		denseLimit: types.DenseLimit,
		seed:       1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	log := o.log.With(zap.Stringer("method", method), zap.Stringer("type", kind))
	switch method {
	case types.FDM:
		if kind == types.Ekenberg {
			return nil, fmt.Errorf("%s with %s: %w", method, kind, types.ErrUnsupportedCombination)
		}
		e, err := fdm.New(g, kind, nE,
			fdm.WithLogger(log),
			fdm.WithDenseLimit(o.denseLimit),
			fdm.WithSeed(o.seed))
		if err != nil {
			return nil, err
		}
		return e, nil
	case types.TMM:
		if g == nil {
			return nil, fmt.Errorf("tmm: nil grid: %w", types.ErrInvalidGrid)
		}
		m, err := band.New(kind, g)
		if err != nil {
			return nil, err
		}
		e, err := tmm.New(g, m, nE,
			tmm.WithLogger(log),
			tmm.WithTolerance(o.tolMeV),
			tmm.WithMaxIterations(o.maxIter))
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("method %s: %w", method, types.ErrUnsupportedCombination)
}

// Solve 创建引擎并求解
func Solve(g *grid.Grid, method types.Method, kind types.NonParabolicity, nE int, opts ...Option) (*types.WavefunctionSet, error) {
	e, err := New(g, method, kind, nE, opts...)
	if err != nil {
		return nil, err
	}
	return e.Solve()
}
