package fdm

import (
	"gonum.org/v1/gonum/mat"
)

// closeEdges 边界行对角元取相邻内部点的值
func closeEdges(a *mat.SymDense) {
	n := a.SymmetricDim()
	a.SetSym(0, 0, a.At(1, 1))
	a.SetSym(n-1, n-1, a.At(n-2, n-2))
}

// kinetic 组装 -ħ²/2·d/dz(w·d/dz) 的三对角离散
//
//	A[i][i±1] = -s(w_i + w_{i±1})
//	A[i][i]   = s(w_{i+1} + 2w_i + w_{i-1})
//
// 对角线另加 diag[i]
func kinetic(s float64, w, diag []float64) *mat.SymDense {
	n := len(w)
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n-1; i++ {
		a.SetSym(i, i+1, -s*(w[i]+w[i+1]))
	}
	for i := 1; i < n-1; i++ {
		a.SetSym(i, i, diag[i]+s*(w[i+1]+2*w[i]+w[i-1]))
	}
	closeEdges(a)
	return a
}

// newParabolic 抛物线模型
func (p *params) newParabolic() Operator {
	w := make([]float64, p.nz)
	for i := range w {
		w[i] = 1 / p.m[i]
	}
	return &dense{a: kinetic(p.s, w, p.v)}
}

// newTaylor 泰勒模型, 广义问题 Aψ = E·Bψ
//
//	A: w = (1+αV)/m, 对角线加 V
//	B: I + 动能项 w = α/m
func (p *params) newTaylor() Operator {
	wa := make([]float64, p.nz)
	wb := make([]float64, p.nz)
	ones := make([]float64, p.nz)
	for i := range wa {
		wa[i] = (1 + p.alpha[i]*p.v[i]) / p.m[i]
		wb[i] = p.alpha[i] / p.m[i]
		ones[i] = 1
	}
	return &dense{a: kinetic(p.s, wa, p.v), b: kinetic(p.s, wb, ones)}
}
