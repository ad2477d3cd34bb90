// Package maths 提供求解器使用的小型数值工具:
// 2×2 传输矩阵、三对角带状 LU 分解、波函数归一化与移位求逆子空间迭代。
package maths

import (
	"math"
	"math/cmplx"
)

// 浮点精度阈值
const Epsilon = 1e-16

// Number 是一个约束，允许任何浮点或复数类型
type Number interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Abs 返回任何支持的 Number 类型的绝对值
func Abs[T Number](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}
