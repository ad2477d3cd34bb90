package tmm

import (
	"math/cmplx"

	"schrodinger/maths"
)

type matrix = maths.Matrix2[complex128]

// MatrixAt 第 j 点的传输矩阵, 将 j-1 区的系数 (A,B) 映射到 j 区
//
//	M = [ ½(1+c)e^{(p-q)z}   ½(1-c)e^{-(p+q)z} ]
//	    [ ½(1-c)e^{(p+q)z}   ½(1+c)e^{-(p-q)z} ]
//
// p = q_{j-1}, q = q_j, c 为匹配系数, j<=1 时为单位矩阵
func (e *Engine) MatrixAt(j int, en float64) matrix {
	if j <= 1 {
		return maths.Identity2[complex128]()
	}
	p := e.model.Wavevector(j-1, en)
	q := e.model.Wavevector(j, en)
	c := e.model.Coefficient(j, en)
	z := complex(e.z[j], 0)
	return matrix{
		{0.5 * (1 + c) * cmplx.Exp((p-q)*z), 0.5 * (1 - c) * cmplx.Exp(-(p+q)*z)},
		{0.5 * (1 - c) * cmplx.Exp((p+q)*z), 0.5 * (1 + c) * cmplx.Exp(-(p-q)*z)},
	}
}

// derivativeAt 传输矩阵对能量的导数, j<=1 时为零
func (e *Engine) derivativeAt(j int, en float64) matrix {
	if j <= 1 {
		return matrix{}
	}
	m := e.model
	p, dp := m.Wavevector(j-1, en), m.WavevectorDerivative(j-1, en)
	q, dq := m.Wavevector(j, en), m.WavevectorDerivative(j, en)
	c, dc := m.Coefficient(j, en), m.CoefficientDerivative(j, en)
	z := complex(e.z[j], 0)
	return matrix{
		{0.5 * (dc + (1+c)*z*(dp-dq)) * cmplx.Exp((p-q)*z), 0.5 * (-dc - (1-c)*z*(dp+dq)) * cmplx.Exp(-(p+q)*z)},
		{0.5 * (-dc + (1-c)*z*(dp+dq)) * cmplx.Exp((p+q)*z), 0.5 * (dc - (1+c)*z*(dp-dq)) * cmplx.Exp(-(p-q)*z)},
	}
}

// Characteristic |M11|, M = M_{nz-1}·…·M_2
func (e *Engine) Characteristic(en float64) float64 {
	t := maths.Identity2[complex128]()
	for j := 2; j < len(e.z); j++ {
		t = e.MatrixAt(j, en).Mul(t)
	}
	return cmplx.Abs(t[0][0])
}

// CharacteristicDerivative d|M11|/dE
//
//	L_j = M_j·L_{j-1}, L_1 = I
//	R_j = R_{j+1}·M_j, R_nz = I
//	dM  = Σ R_{j+1}·dM_j·L_{j-1}
func (e *Engine) CharacteristicDerivative(en float64) float64 {
	nz := len(e.z)
	l, r := e.left, e.right
	l[0], l[1] = maths.Identity2[complex128](), maths.Identity2[complex128]()
	r[nz] = maths.Identity2[complex128]()
	mj := e.mj
	for j := 2; j < nz; j++ {
		mj[j] = e.MatrixAt(j, en)
		l[j] = mj[j].Mul(l[j-1])
	}
	for j := nz - 1; j >= 2; j-- {
		r[j] = r[j+1].Mul(mj[j])
	}
	var dm complex128
	for j := 2; j < nz; j++ {
		d := r[j+1].Mul(e.derivativeAt(j, en)).Mul(l[j-1])
		dm += d[0][0]
	}
	m := l[nz-1][0][0]
	am := cmplx.Abs(m)
	if am == 0 {
		return 0
	}
	return real(cmplx.Conj(m)*dm) / am
}
