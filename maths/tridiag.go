package maths

import (
	"errors"
	"math"
)

// ErrSingular 矩阵奇异或接近奇异
var ErrSingular = errors.New("matrix is singular or nearly singular")

// Tridiagonal 三对角矩阵
//
//	Sub[i] = A[i+1][i], Diag[i] = A[i][i], Sup[i] = A[i][i+1]
type Tridiagonal struct {
	Sub, Diag, Sup []float64
}

// NewTridiagonal 创建 n 阶三对角矩阵
func NewTridiagonal(n int) *Tridiagonal {
	return &Tridiagonal{
		Sub:  make([]float64, max(n-1, 0)),
		Diag: make([]float64, n),
		Sup:  make([]float64, max(n-1, 0)),
	}
}

// Dim 矩阵维度
func (t *Tridiagonal) Dim() int { return len(t.Diag) }

// MulVec dst = A·x
func (t *Tridiagonal) MulVec(dst, x []float64) {
	n := t.Dim()
	for i := 0; i < n; i++ {
		s := t.Diag[i] * x[i]
		if i > 0 {
			s += t.Sub[i-1] * x[i-1]
		}
		if i < n-1 {
			s += t.Sup[i] * x[i+1]
		}
		dst[i] = s
	}
}

// BandLU 三对角矩阵带状LU分解（部分主元法）
// 行交换后 U 带有两条上对角线
type BandLU interface {
	// Decompose 执行分解
	// 参数：
	//   t - 待分解的三对角矩阵（不修改）
	// 返回：
	//   error - 如果矩阵奇异或接近奇异则返回 ErrSingular
	Decompose(t *Tridiagonal) error
	// SolveReuse 解线性方程组 Ax = b，x 与 b 可以相同
	SolveReuse(b, x []float64) error
}

type bandLU struct {
	n    int
	dl   []float64 // L 的消元因子
	d    []float64 // U 对角线
	du   []float64 // U 第一上对角线
	du2  []float64 // U 第二上对角线
	ipiv []int     // 第 i 步主元所在行
}

// NewBandLU 创建 n 阶带状LU分解器
func NewBandLU(n int) (BandLU, error) {
	if n < 1 {
		return nil, errors.New("band lu dimension must be positive")
	}
	return &bandLU{
		n:    n,
		dl:   make([]float64, max(n-1, 0)),
		d:    make([]float64, n),
		du:   make([]float64, max(n-1, 0)),
		du2:  make([]float64, max(n-2, 0)),
		ipiv: make([]int, n),
	}, nil
}

// Decompose 执行带状LU分解
// 每一步在当前行与下一行之间选择绝对值较大者作为主元
func (lu *bandLU) Decompose(t *Tridiagonal) error {
	n := lu.n
	if t.Dim() != n {
		return errors.New("matrix dimension mismatch")
	}
	copy(lu.dl, t.Sub)
	copy(lu.d, t.Diag)
	copy(lu.du, t.Sup)
	for i := range lu.du2 {
		lu.du2[i] = 0
	}
	// 奇异判定按矩阵最大元素缩放
	scale := 0.0
	for _, s := range [][]float64{t.Sub, t.Diag, t.Sup} {
		for _, v := range s {
			scale = math.Max(scale, math.Abs(v))
		}
	}
	if scale == 0 {
		return ErrSingular
	}
	for i := 0; i < n-1; i++ {
		lu.ipiv[i] = i
		if math.Abs(lu.d[i]) >= math.Abs(lu.dl[i]) {
			// 无需交换
			if lu.d[i] != 0 {
				fact := lu.dl[i] / lu.d[i]
				lu.dl[i] = fact
				lu.d[i+1] -= fact * lu.du[i]
			}
			continue
		}
		// 交换第 i 与 i+1 行
		fact := lu.d[i] / lu.dl[i]
		lu.d[i] = lu.dl[i]
		lu.dl[i] = fact
		temp := lu.du[i]
		lu.du[i] = lu.d[i+1]
		lu.d[i+1] = temp - fact*lu.d[i+1]
		if i < n-2 {
			lu.du2[i] = lu.du[i+1]
			lu.du[i+1] = -fact * lu.du[i+1]
		}
		lu.ipiv[i] = i + 1
	}
	lu.ipiv[n-1] = n - 1
	for i := 0; i < n; i++ {
		if math.Abs(lu.d[i]) <= Epsilon*scale {
			return ErrSingular
		}
	}
	return nil
}

// SolveReuse 解线性方程组 Ax = b
// 1. 前向替换：按主元顺序应用 L
// 2. 后向替换：求解 Ux = y
func (lu *bandLU) SolveReuse(b, x []float64) error {
	n := lu.n
	if len(b) != n || len(x) != n {
		return errors.New("vector dimension mismatch")
	}
	if &x[0] != &b[0] {
		copy(x, b)
	}
	for i := 0; i < n-1; i++ {
		ip := lu.ipiv[i]
		temp := x[i+1-ip+i] - lu.dl[i]*x[ip]
		x[i] = x[ip]
		x[i+1] = temp
	}
	x[n-1] /= lu.d[n-1]
	if n > 1 {
		x[n-2] = (x[n-2] - lu.du[n-2]*x[n-1]) / lu.d[n-2]
	}
	for i := n - 3; i >= 0; i-- {
		x[i] = (x[i] - lu.du[i]*x[i+1] - lu.du2[i]*x[i+2]) / lu.d[i]
	}
	return nil
}
