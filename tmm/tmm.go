// Package tmm 传输矩阵法求解束缚态
//
// 在能量轴上扫描 |M11| 的局部极小, 以导数符号二分细化,
// 再由右侧衰减尾反向传播得到波函数
package tmm

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"schrodinger/band"
	"schrodinger/grid"
	"schrodinger/maths"
	"schrodinger/types"

	"go.uber.org/zap"
)

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

// WithTolerance 细化容差 [meV]
func WithTolerance(meV float64) Option { return func(e *Engine) { e.tolMeV = meV } }

// WithMaxIterations 细化最大迭代次数
func WithMaxIterations(n int) Option { return func(e *Engine) { e.maxIter = n } }

// Engine 传输矩阵求解器
type Engine struct {
	g       *grid.Grid
	model   band.Model
	nE      int
	log     *zap.Logger
	tolMeV  float64
	tol     float64 // [J]
	maxIter int

	z     []float64
	vmin  float64
	vmax  float64
	dE    float64
	left  []matrix // 前缀积
	right []matrix // 后缀积
	mj    []matrix
}

// New 创建求解器, nE 为最多返回的态数量, 0 表示不限
func New(g *grid.Grid, model band.Model, nE int, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("tmm: nil grid: %w", types.ErrInvalidGrid)
	}
	if model == nil {
		return nil, fmt.Errorf("tmm: nil model: %w", types.ErrUnsupportedCombination)
	}
	if nE < 0 {
		return nil, fmt.Errorf("tmm: negative state count %d: %w", nE, types.ErrMalformedInput)
	}
	e := &Engine{
		g:       g,
		model:   model,
		nE:      nE,
		log:     zap.NewNop(),
		tolMeV:  types.Tolerance,
		maxIter: types.MaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !(e.tolMeV > 0) || e.maxIter < 1 {
		return nil, fmt.Errorf("tmm: tolerance %g meV, %d iterations: %w", e.tolMeV, e.maxIter, types.ErrMalformedInput)
	}
	nz := g.NZ()
	e.tol = g.Const.FromMeV(e.tolMeV)
	e.z = append([]float64(nil), g.Z...)
	e.vmin, e.vmax = g.Range()
	e.dE = g.DE()
	e.left = make([]matrix, nz+1)
	e.right = make([]matrix, nz+1)
	e.mj = make([]matrix, nz+1)
	return e, nil
}

// Method 求解方法
func (e *Engine) Method() types.Method { return types.TMM }

// Type 非抛物线模型
func (e *Engine) Type() types.NonParabolicity { return e.model.Type() }

// Scan 从 min V + 3dE 起以 dE 步进到 max V, 每找到一个 |M11| 局部极小
// 以区间 [E-2dE, E] 调用 fn, fn 返回 false 时停止
func (e *Engine) Scan(fn func(lo, hi float64) bool) {
	dE := e.dE
	en := e.vmin + 3*dE
	m2 := e.Characteristic(en - 2*dE)
	m1 := e.Characteristic(en - dE)
	for en < e.vmax {
		m0 := e.Characteristic(en)
		if m0 > m1 && m1 < m2 {
			if !fn(en-2*dE, en) {
				return
			}
		}
		m2, m1 = m1, m0
		en += dE
	}
}

var errBoundary = errors.New("minimum on bracket boundary")

// Refine 在区间内细化本征能量
// 导数在两端异号时二分, 否则对 |M11| 做黄金分割搜索
func (e *Engine) Refine(lo, hi float64) (float64, error) {
	dlo, dhi := e.CharacteristicDerivative(lo), e.CharacteristicDerivative(hi)
	if dlo < 0 && dhi > 0 {
		return e.bisect(lo, hi)
	}
	return e.golden(lo, hi)
}

func (e *Engine) bisect(lo, hi float64) (float64, error) {
	a, b := lo, hi
	for i := 0; i < e.maxIter; i++ {
		mid := (a + b) / 2
		if b-a < e.tol {
			return mid, nil
		}
		d := e.CharacteristicDerivative(mid)
		switch {
		case d == 0:
			return mid, nil
		case d < 0:
			a = mid
		default:
			b = mid
		}
	}
	return 0, &types.RefineError{Lo: lo, Hi: hi, Err: types.ErrNotConverged}
}

var invPhi = (math.Sqrt(5) - 1) / 2

func (e *Engine) golden(lo, hi float64) (float64, error) {
	a, b := lo, hi
	x1, x2 := b-invPhi*(b-a), a+invPhi*(b-a)
	f1, f2 := e.Characteristic(x1), e.Characteristic(x2)
	for i := 0; i < e.maxIter; i++ {
		if b-a < e.tol {
			x := (a + b) / 2
			if x-lo < 2*e.tol || hi-x < 2*e.tol {
				return 0, &types.RefineError{Lo: lo, Hi: hi, Err: errBoundary}
			}
			return x, nil
		}
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invPhi*(b-a)
			f1 = e.Characteristic(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invPhi*(b-a)
			f2 = e.Characteristic(x2)
		}
	}
	return 0, &types.RefineError{Lo: lo, Hi: hi, Err: types.ErrNotConverged}
}

// Wavefunction 本征能量处的波函数 (未归一化)
// 从右侧衰减尾 (A,B) = (0, e^{q z}) 出发, 以 M_j⁻¹ 向左传播
// 0 区沿用 1 区的系数与波矢
func (e *Engine) Wavefunction(en float64) ([]float64, error) {
	nz := len(e.z)
	psi := make([]float64, nz)
	last := nz - 1
	q := e.model.Wavevector(last, en)
	v := maths.Vector2[complex128]{0, cmplx.Exp(q * complex(e.z[last], 0))}
	for j := last; j >= 1; j-- {
		q = e.model.Wavevector(j, en)
		psi[j] = e.amplitude(v, q, e.z[j])
		if j == 1 {
			psi[0] = e.amplitude(v, q, e.z[0])
			break
		}
		inv, err := e.MatrixAt(j, en).Inverse()
		if err != nil {
			return nil, fmt.Errorf("transfer matrix %d at %g meV: %v: %w", j, e.g.Const.ToMeV(en), err, types.ErrSingularMatrix)
		}
		v = inv.MulVec(v)
	}
	return psi, nil
}

func (e *Engine) amplitude(v maths.Vector2[complex128], q complex128, z float64) float64 {
	qz := q * complex(z, 0)
	return real(v[0]*cmplx.Exp(qz) + v[1]*cmplx.Exp(-qz))
}

// Solve 扫描并细化全部束缚态
func (e *Engine) Solve() (*types.WavefunctionSet, error) {
	set := &types.WavefunctionSet{
		Method: types.TMM,
		Type:   e.model.Type(),
		Z:      append([]float64(nil), e.z...),
		V:      append([]float64(nil), e.g.V...),
	}
	c := e.g.Const
	e.Scan(func(lo, hi float64) bool {
		en, err := e.Refine(lo, hi)
		if err == nil {
			var psi []float64
			if psi, err = e.Wavefunction(en); err == nil {
				if err = maths.Normalize(e.z, psi); err == nil {
					set.States = append(set.States, types.State{Energy: en, Psi: psi})
				}
			}
		}
		if err != nil {
			var re *types.RefineError
			if !errors.As(err, &re) {
				err = &types.RefineError{Lo: lo, Hi: hi, Err: err}
			}
			e.log.Warn("tmm candidate skipped",
				zap.Float64("lo_meV", c.ToMeV(lo)),
				zap.Float64("hi_meV", c.ToMeV(hi)),
				zap.Error(err))
			set.Skipped = append(set.Skipped, err)
		}
		return e.nE == 0 || set.Len() < e.nE
	})
	if set.Len() == 0 {
		return nil, fmt.Errorf("tmm %s: %w", e.model.Type(), types.ErrNoBoundStates)
	}
	e.log.Debug("tmm solved",
		zap.String("type", e.model.Type().String()),
		zap.Int("states", set.Len()),
		zap.Int("skipped", len(set.Skipped)))
	return set, nil
}
