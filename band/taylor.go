package band

import (
	"math/cmplx"

	"schrodinger/types"
)

// Taylor 一阶泰勒展开的能量相关有效质量
//
//	m(E) = m/(1-α(E-V))
//	q = sqrt(2m(V-E)/(ħ²(1-α(E-V))))
type Taylor struct{ profile }

func (*Taylor) Type() types.NonParabolicity { return types.Taylor }

// factor 1-α(E-V)
func (t *Taylor) factor(j int, e float64) float64 {
	return 1 - t.alpha[j]*(e-t.v[j])
}

func (t *Taylor) Wavevector(j int, e float64) complex128 {
	return cmplx.Sqrt(complex(2*t.m[j]/t.hbar2*(t.v[j]-e)/t.factor(j, e), 0))
}

func (t *Taylor) WavevectorDerivative(j int, e float64) complex128 {
	f := t.factor(j, e)
	return complex(-t.m[j]/t.hbar2/(f*f), 0) / t.Wavevector(j, e)
}

func (t *Taylor) Coefficient(j int, e float64) complex128 {
	i := prev(j)
	g := t.m[j] / t.m[i] * t.factor(i, e) / t.factor(j, e)
	return complex(g, 0) * t.Wavevector(i, e) / t.Wavevector(j, e)
}

func (t *Taylor) CoefficientDerivative(j int, e float64) complex128 {
	i := prev(j)
	fi, fj := t.factor(i, e), t.factor(j, e)
	r := t.m[j] / t.m[i]
	g := r * fi / fj
	dg := r * (t.alpha[j]*fi - t.alpha[i]*fj) / (fj * fj)
	qp, dqp := t.Wavevector(i, e), t.WavevectorDerivative(i, e)
	q, dq := t.Wavevector(j, e), t.WavevectorDerivative(j, e)
	return complex(g, 0)*(q*dqp-qp*dq)/(q*q) + complex(dg, 0)*qp/q
}
