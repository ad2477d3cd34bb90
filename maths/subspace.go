package maths

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence 迭代未收敛
var ErrNoConvergence = errors.New("subspace iteration did not converge")

// Operator 线性算子 dst = Op·src
type Operator interface {
	Dim() int
	Apply(dst, src []float64) error
}

// Subspace 子空间迭代求解最大模本征对
// 与移位求逆算子配合时即得到距离移位点最近的本征值
type Subspace struct {
	K       int     // 需要的本征对数量
	Block   int     // 子空间维度, 不小于 K
	MaxIter int     // 最大迭代次数
	Tol     float64 // Ritz 对相对残差容差
	Seed    int64   // 初始子空间随机种子
	// Wanted 只要求满足条件的 Ritz 值收敛, 为空时要求全部收敛
	Wanted func(theta complex128) bool
}

// Ritz 近似本征对
type Ritz struct {
	Value  complex128
	Vector []complex128
}

// Solve 执行迭代
// 每步: Y = Op·X, H = XᵀY, 对 H 求本征分解, 以残差 ||Ys - θXs|| 判定收敛, X = orth(Y)
func (s *Subspace) Solve(op Operator) ([]Ritz, error) {
	n := op.Dim()
	p := min(max(s.Block, s.K), n)
	k := min(s.K, p)
	if k < 1 {
		return nil, errors.New("subspace size must be positive")
	}
	rnd := rand.New(rand.NewSource(s.Seed))
	x := make([][]float64, p)
	y := make([][]float64, p)
	for c := range x {
		x[c] = make([]float64, n)
		y[c] = make([]float64, n)
		for i := range x[c] {
			x[c][i] = rnd.NormFloat64()
		}
	}
	orthonormalize(x, rnd)
	h := mat.NewDense(p, p, nil)
	var eig mat.Eigen
	vecs := mat.NewCDense(p, p, nil)
	for it := 0; it < s.MaxIter; it++ {
		for c := range x {
			if err := op.Apply(y[c], x[c]); err != nil {
				return nil, err
			}
		}
		for r := range x {
			for c := range y {
				h.Set(r, c, floats.Dot(x[r], y[c]))
			}
		}
		if !eig.Factorize(h, mat.EigenRight) {
			return nil, fmt.Errorf("ritz eigen decomposition: %w", ErrNoConvergence)
		}
		theta := eig.Values(nil)
		eig.VectorsTo(vecs)
		order := make([]int, p)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return cmplx.Abs(theta[order[a]]) > cmplx.Abs(theta[order[b]])
		})
		order = order[:k]
		converged := it > 0
		out := make([]Ritz, 0, k)
		for _, c := range order {
			xs, ys := combine(x, vecs, c), combine(y, vecs, c)
			var res, nrm float64
			for i := range xs {
				d := ys[i] - theta[c]*xs[i]
				res += real(d)*real(d) + imag(d)*imag(d)
				nrm += real(xs[i])*real(xs[i]) + imag(xs[i])*imag(xs[i])
			}
			rel := math.Sqrt(res/nrm) / cmplx.Abs(theta[c])
			if (s.Wanted == nil || s.Wanted(theta[c])) && !(rel <= s.Tol) {
				converged = false
			}
			out = append(out, Ritz{Value: theta[c], Vector: xs})
		}
		if converged {
			return out, nil
		}
		x, y = y, x
		orthonormalize(x, rnd)
	}
	return nil, fmt.Errorf("%d iterations: %w", s.MaxIter, ErrNoConvergence)
}

// combine 计算 Σ_r v[r]·s[r][c]
func combine(v [][]float64, s *mat.CDense, c int) []complex128 {
	out := make([]complex128, len(v[0]))
	for r := range v {
		w := s.At(r, c)
		if w == 0 {
			continue
		}
		for i, a := range v[r] {
			out[i] += complex(a, 0) * w
		}
	}
	return out
}

// orthonormalize 两遍修正 Gram-Schmidt
// 线性相关的列以随机向量替换
func orthonormalize(v [][]float64, rnd *rand.Rand) {
	for c := range v {
		for retry := 0; ; retry++ {
			before := floats.Norm(v[c], 2)
			for pass := 0; pass < 2; pass++ {
				for r := 0; r < c; r++ {
					floats.AddScaled(v[c], -floats.Dot(v[r], v[c]), v[r])
				}
			}
			after := floats.Norm(v[c], 2)
			if after > 1e-10*before && after > 0 || retry > 3 {
				floats.Scale(1/after, v[c])
				break
			}
			for i := range v[c] {
				v[c][i] = rnd.NormFloat64()
			}
		}
	}
}
