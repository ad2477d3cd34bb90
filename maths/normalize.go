package maths

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// ErrZeroNorm 波函数范数为零或非有限值
var ErrZeroNorm = errors.New("wavefunction norm is zero or not finite")

// Norm2 梯形积分 ∫|ψ|² dz
func Norm2(z, psi []float64) float64 {
	sq := make([]float64, len(psi))
	for i, v := range psi {
		sq[i] = v * v
	}
	return integrate.Trapezoidal(z, sq)
}

// Normalize 原地归一化使 ∫|ψ|² dz = 1
// 并将绝对值最大的采样点调整为正值
func Normalize(z, psi []float64) error {
	n2 := Norm2(z, psi)
	if !(n2 > 0) || math.IsInf(n2, 0) {
		return ErrZeroNorm
	}
	s := 1 / math.Sqrt(n2)
	if psi[floats.MaxIdx(absAll(psi))] < 0 {
		s = -s
	}
	floats.Scale(s, psi)
	return nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
