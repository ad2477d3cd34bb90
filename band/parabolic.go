package band

import (
	"math/cmplx"

	"schrodinger/types"
)

// Parabolic 抛物线色散
//
//	q = sqrt(2m(V-E))/ħ
type Parabolic struct{ profile }

func (*Parabolic) Type() types.NonParabolicity { return types.Parabolic }

func (p *Parabolic) Wavevector(j int, e float64) complex128 {
	return cmplx.Sqrt(complex(2*p.m[j]/p.hbar2*(p.v[j]-e), 0))
}

func (p *Parabolic) WavevectorDerivative(j int, e float64) complex128 {
	return complex(-p.m[j]/p.hbar2, 0) / p.Wavevector(j, e)
}

func (p *Parabolic) Coefficient(j int, e float64) complex128 {
	i := prev(j)
	return complex(p.m[j]/p.m[i], 0) * p.Wavevector(i, e) / p.Wavevector(j, e)
}

func (p *Parabolic) CoefficientDerivative(j int, e float64) complex128 {
	i := prev(j)
	qp, dqp := p.Wavevector(i, e), p.WavevectorDerivative(i, e)
	q, dq := p.Wavevector(j, e), p.WavevectorDerivative(j, e)
	return complex(p.m[j]/p.m[i], 0) * (q*dqp - qp*dq) / (q * q)
}
