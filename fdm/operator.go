package fdm

import (
	"fmt"

	"schrodinger/types"

	"gonum.org/v1/gonum/mat"
)

// mode 算子本征对, 能量单位 eV, 向量只保留前 nz 个分量
type mode struct {
	value  complex128
	vector []float64
}

// Operator 离散哈密顿算子
// 稠密后端用于抛物线与泰勒模型, 块后端用于 Kane 模型
type Operator interface {
	// Dim 网格点数量
	Dim() int
	// Backend 后端名称
	Backend() string
	// modes 计算本征对
	modes(nE int) ([]mode, error)
}

// dense 稠密对称算子, B 不为空时求解广义问题 Aψ = E·Bψ
type dense struct {
	a, b *mat.SymDense
}

func (d *dense) Dim() int { return d.a.SymmetricDim() }

func (d *dense) Backend() string {
	if d.b != nil {
		return "dense-generalized"
	}
	return "dense"
}

func (d *dense) modes(int) ([]mode, error) {
	n := d.Dim()
	if d.b == nil {
		var eig mat.EigenSym
		if !eig.Factorize(d.a, true) {
			return nil, fmt.Errorf("symmetric eigen decomposition: %w", types.ErrSingularMatrix)
		}
		var vecs mat.Dense
		eig.VectorsTo(&vecs)
		return collect(eig.Values(nil), &vecs, n), nil
	}
	// B = L·Lᵀ, C = L⁻¹·A·L⁻ᵀ, ψ = L⁻ᵀ·y
	var chol mat.Cholesky
	if !chol.Factorize(d.b) {
		return nil, fmt.Errorf("cholesky of B: %w", types.ErrSingularMatrix)
	}
	var l, li mat.TriDense
	chol.LTo(&l)
	if err := li.InverseTri(&l); err != nil {
		return nil, fmt.Errorf("inverse of L: %v: %w", err, types.ErrSingularMatrix)
	}
	var tmp, c mat.Dense
	tmp.Mul(&li, d.a)
	c.Mul(&tmp, li.T())
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (c.At(i, j)+c.At(j, i))/2)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, fmt.Errorf("generalized eigen decomposition: %w", types.ErrSingularMatrix)
	}
	var y, psi mat.Dense
	eig.VectorsTo(&y)
	psi.Mul(li.T(), &y)
	return collect(eig.Values(nil), &psi, n), nil
}

// collect 按列提取实本征对
func collect(values []float64, vecs *mat.Dense, n int) []mode {
	out := make([]mode, len(values))
	for c, v := range values {
		vec := make([]float64, n)
		mat.Col(vec, c, vecs)
		out[c] = mode{value: complex(v, 0), vector: vec}
	}
	return out
}
