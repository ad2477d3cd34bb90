package maths

import "errors"

// Matrix2 2×2 矩阵, 按行存储
type Matrix2[T Number] [2][2]T

// Vector2 二维列向量
type Vector2[T Number] [2]T

// Identity2 单位矩阵
func Identity2[T Number]() Matrix2[T] {
	return Matrix2[T]{{1, 0}, {0, 1}}
}

// Mul 矩阵乘法 m·b
func (m Matrix2[T]) Mul(b Matrix2[T]) Matrix2[T] {
	return Matrix2[T]{
		{m[0][0]*b[0][0] + m[0][1]*b[1][0], m[0][0]*b[0][1] + m[0][1]*b[1][1]},
		{m[1][0]*b[0][0] + m[1][1]*b[1][0], m[1][0]*b[0][1] + m[1][1]*b[1][1]},
	}
}

// Add 矩阵加法
func (m Matrix2[T]) Add(b Matrix2[T]) Matrix2[T] {
	return Matrix2[T]{
		{m[0][0] + b[0][0], m[0][1] + b[0][1]},
		{m[1][0] + b[1][0], m[1][1] + b[1][1]},
	}
}

// MulVec 矩阵乘向量
func (m Matrix2[T]) MulVec(v Vector2[T]) Vector2[T] {
	return Vector2[T]{m[0][0]*v[0] + m[0][1]*v[1], m[1][0]*v[0] + m[1][1]*v[1]}
}

// Det 行列式
func (m Matrix2[T]) Det() T {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// ErrSingular2 行列式为零
var ErrSingular2 = errors.New("2x2 matrix is singular")

// Inverse 逆矩阵
func (m Matrix2[T]) Inverse() (Matrix2[T], error) {
	det := m.Det()
	if Abs(det) == 0 {
		return Matrix2[T]{}, ErrSingular2
	}
	return Matrix2[T]{
		{m[1][1] / det, -m[0][1] / det},
		{-m[1][0] / det, m[0][0] / det},
	}, nil
}
