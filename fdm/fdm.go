// Package fdm 有限差分法求解束缚态
package fdm

import (
	"fmt"
	"math"
	"sort"

	"schrodinger/grid"
	"schrodinger/maths"
	"schrodinger/types"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// params 以 eV 为能量单位的离散参数
type params struct {
	nz         int
	u          float64   // 1 eV [J]
	s          float64   // ħ²/(4dz²) [eV·kg]
	m          []float64 // 有效质量 [kg]
	v          []float64 // 势能 [eV]
	alpha      []float64 // 非抛物线系数 [1/eV]
	lo, hi     float64   // 势能范围 [eV]
	denseLimit int
	seed       int64
}

func newParams(g *grid.Grid, denseLimit int, seed int64) *params {
	nz := g.NZ()
	u := g.Const.E
	dz := g.DzM()
	p := &params{
		nz:         nz,
		u:          u,
		s:          g.Const.HbarSq() / (4 * dz * dz) / u,
		m:          g.Meff,
		v:          make([]float64, nz),
		alpha:      make([]float64, nz),
		denseLimit: denseLimit,
		seed:       seed,
	}
	ak := g.AlphaKane()
	for i := 0; i < nz; i++ {
		p.v[i] = g.V[i] / u
		p.alpha[i] = ak[i] * u
	}
	p.lo, p.hi = floats.Min(p.v), floats.Max(p.v)
	return p
}

// Option 引擎配置
type Option func(*Engine)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithDenseLimit Kane 块矩阵不超过该维度时使用稠密分解
func WithDenseLimit(n int) Option { return func(e *Engine) { e.denseLimit = n } }

// WithSeed 子空间迭代初始向量的随机种子
func WithSeed(seed int64) Option { return func(e *Engine) { e.seed = seed } }

// Engine 有限差分求解器
type Engine struct {
	g          *grid.Grid
	kind       types.NonParabolicity
	nE         int
	log        *zap.Logger
	denseLimit int
	seed       int64
	op         Operator
	p          *params
}

// New 创建求解器, nE 为最多返回的态数量, 0 表示不限
func New(g *grid.Grid, kind types.NonParabolicity, nE int, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("fdm: nil grid: %w", types.ErrInvalidGrid)
	}
	if nE < 0 {
		return nil, fmt.Errorf("fdm: negative state count %d: %w", nE, types.ErrMalformedInput)
	}
	e := &Engine{
		g:          g,
		kind:       kind,
		nE:         nE,
		log:        zap.NewNop(),
		denseLimit: types.DenseLimit,
		seed:       1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.p = newParams(g, e.denseLimit, e.seed)
	switch kind {
	case types.Parabolic:
		e.op = e.p.newParabolic()
	case types.Taylor:
		e.op = e.p.newTaylor()
	case types.Kane:
		e.op = e.p.newKane()
	default:
		return nil, fmt.Errorf("fdm with %s: %w", kind, types.ErrUnsupportedCombination)
	}
	return e, nil
}

// Operator 离散算子
func (e *Engine) Operator() Operator { return e.op }

// Method 求解方法
func (e *Engine) Method() types.Method { return types.FDM }

// Type 非抛物线模型
func (e *Engine) Type() types.NonParabolicity { return e.kind }

// Solve 求解束缚态
func (e *Engine) Solve() (*types.WavefunctionSet, error) {
	modes, err := e.op.modes(e.nE)
	if err != nil {
		return nil, err
	}
	states := e.extract(modes)
	if len(states) == 0 {
		return nil, fmt.Errorf("fdm %s: %w", e.kind, types.ErrNoBoundStates)
	}
	e.log.Debug("fdm solved",
		zap.String("type", e.kind.String()),
		zap.String("backend", e.op.Backend()),
		zap.Int("states", len(states)))
	return &types.WavefunctionSet{
		Method: types.FDM,
		Type:   e.kind,
		Z:      append([]float64(nil), e.g.Z...),
		V:      append([]float64(nil), e.g.V...),
		States: states,
	}, nil
}

// extract 取实部, 去掉共轭重复, 排序, 过滤并归一化
func (e *Engine) extract(modes []mode) []types.State {
	kept := modes[:0:0]
	for _, m := range modes {
		if imag(m.value) < 0 {
			continue
		}
		r := real(m.value)
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= e.p.lo || r >= e.p.hi {
			continue
		}
		kept = append(kept, m)
	}
	sort.SliceStable(kept, func(i, j int) bool { return real(kept[i].value) < real(kept[j].value) })
	if e.nE > 0 && len(kept) > e.nE {
		kept = kept[:e.nE]
	}
	states := make([]types.State, 0, len(kept))
	for _, m := range kept {
		psi := append([]float64(nil), m.vector...)
		if err := maths.Normalize(e.g.Z, psi); err != nil {
			e.log.Warn("fdm mode dropped", zap.Float64("energy_meV", real(m.value)*1e3), zap.Error(err))
			continue
		}
		states = append(states, types.State{Energy: real(m.value) * e.p.u, Psi: psi})
	}
	return states
}
