package band

import (
	"math/cmplx"

	"schrodinger/types"
)

// Ekenberg 四阶色散
//
//	E-V = ħ²k²/2m - α(ħ²k²/2m)²
//	q = sqrt(m/(ħ²α)·(sqrt(1+4α(V-E))-1))
type Ekenberg struct{ profile }

func (*Ekenberg) Type() types.NonParabolicity { return types.Ekenberg }

func (k *Ekenberg) Wavevector(j int, e float64) complex128 {
	// sqrt(1+x)-1 = x/(sqrt(1+x)+1)
	x := complex(4*k.alpha[j]*(k.v[j]-e), 0)
	inner := x / (cmplx.Sqrt(1+x) + 1)
	return cmplx.Sqrt(complex(k.m[j]/(k.hbar2*k.alpha[j]), 0) * inner)
}

// beta ħ²α/m
func (k *Ekenberg) beta(j int) complex128 {
	return complex(k.hbar2*k.alpha[j]/k.m[j], 0)
}

func (k *Ekenberg) WavevectorDerivative(j int, e float64) complex128 {
	q := k.Wavevector(j, e)
	return complex(-k.m[j]/k.hbar2, 0) / q / (1 + k.beta(j)*q*q)
}

func (k *Ekenberg) Coefficient(j int, e float64) complex128 {
	i := prev(j)
	p, q := k.Wavevector(i, e), k.Wavevector(j, e)
	r := complex(k.m[j]/k.m[i], 0)
	return r * (1 + k.beta(i)*p*p) / (1 + k.beta(j)*q*q) * p / q
}

func (k *Ekenberg) CoefficientDerivative(j int, e float64) complex128 {
	i := prev(j)
	p, dp := k.Wavevector(i, e), k.WavevectorDerivative(i, e)
	q, dq := k.Wavevector(j, e), k.WavevectorDerivative(j, e)
	bi, bj := k.beta(i), k.beta(j)
	r := complex(k.m[j]/k.m[i], 0)
	num := (1+3*bi*p*p)*dp - (1+bi*p*p)/(1+bj*q*q)*p/q*(1+3*bj*q*q)*dq
	return r / (q + bj*q*q*q) * num
}
