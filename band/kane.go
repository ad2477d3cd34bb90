package band

import (
	"math/cmplx"

	"schrodinger/types"
)

// Kane 两带 Kane 色散
//
//	m(E) = m(1+α(E-V))
//	q = sqrt(2m(1+α(E-V))(V-E))/ħ
type Kane struct{ profile }

func (*Kane) Type() types.NonParabolicity { return types.Kane }

// factor 1+α(E-V)
func (k *Kane) factor(j int, e float64) float64 {
	return 1 + k.alpha[j]*(e-k.v[j])
}

func (k *Kane) Wavevector(j int, e float64) complex128 {
	return cmplx.Sqrt(complex(2*k.m[j]*k.factor(j, e)/k.hbar2*(k.v[j]-e), 0))
}

func (k *Kane) WavevectorDerivative(j int, e float64) complex128 {
	d := -k.m[j] / k.hbar2 * (1 + 2*k.alpha[j]*(e-k.v[j]))
	return complex(d, 0) / k.Wavevector(j, e)
}

func (k *Kane) Coefficient(j int, e float64) complex128 {
	i := prev(j)
	g := k.m[j] / k.m[i] * k.factor(j, e) / k.factor(i, e)
	return complex(g, 0) * k.Wavevector(i, e) / k.Wavevector(j, e)
}

func (k *Kane) CoefficientDerivative(j int, e float64) complex128 {
	i := prev(j)
	fi, fj := k.factor(i, e), k.factor(j, e)
	r := k.m[j] / k.m[i]
	g := r * fj / fi
	dg := r * (k.alpha[j] - k.alpha[i] + k.alpha[j]*k.alpha[i]*(k.v[j]-k.v[i])) / (fi * fi)
	qp, dqp := k.Wavevector(i, e), k.WavevectorDerivative(i, e)
	q, dq := k.Wavevector(j, e), k.WavevectorDerivative(j, e)
	return complex(g, 0)*(q*dqp-qp*dq)/(q*q) + complex(dg, 0)*qp/q
}
