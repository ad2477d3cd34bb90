package fdm

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"schrodinger/maths"
	"schrodinger/types"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// kaneRow 第四块行的系数, k 对应 A0..A3
type kaneRow struct {
	sub  [3]float64 // 第 i-1 列
	diag [4]float64 // 第 i 列
	sup  [3]float64 // 第 i+1 列
}

// block Kane 模型的 4nz 阶伴随块矩阵
//
//	[ 0  I  0  0 ] [ψ  ]     [ψ  ]
//	[ 0  0  I  0 ] [Eψ ] = E [Eψ ]
//	[ 0  0  0  I ] [E²ψ]     [E²ψ]
//	[A0 A1 A2 A3 ] [E³ψ]     [E³ψ]
//
// A0..A2 三对角, A3 对角
type block struct {
	rows       []kaneRow
	sigma      float64 // 首个移位点, 略低于势阱底 [eV]
	lo, hi     float64 // 势能范围 [eV]
	denseLimit int
	seed       int64
}

func (b *block) Dim() int { return len(b.rows) }

func (b *block) Backend() string {
	if b.useDense() {
		return "block-dense"
	}
	return "block-shift-invert"
}

func (b *block) useDense() bool { return 4*len(b.rows) <= b.denseLimit }

// newKane 组装 Kane 模型系数, 边界点以自身作为相邻点
func (p *params) newKane() Operator {
	nz, s := p.nz, p.s
	rows := make([]kaneRow, nz)
	for i := range rows {
		ai := 1 / p.alpha[i]
		mi := ai / p.m[i]
		vi := p.v[i]
		ap, am, mp, mm, vp, vm := ai, ai, mi, mi, vi, vi
		if i > 0 && i < nz-1 {
			ap, am = 1/p.alpha[i+1], 1/p.alpha[i-1]
			mp, mm = ap/p.m[i+1], am/p.m[i-1]
			vp, vm = p.v[i+1], p.v[i-1]
		}
		bm, b0, bp := am*ai, am*ap, ap*ai
		r := &rows[i]
		if i > 0 {
			r.sub[0] = -s * (1 - vp/ap) * (mm*bp*(1-vi/ai) + mi*b0*(1-vm/am))
			r.sub[1] = -s * (mi*(am+ap-vm-vp) + mm*(ap+ai-vi-vp))
			r.sub[2] = -s * (mm + mi)
		}
		if i < nz-1 {
			r.sup[0] = -s * (1 - vm/am) * (mp*bm*(1-vi/ai) + mi*b0*(1-vp/ap))
			r.sup[1] = -s * (mi*(am+ap-vm-vp) + mp*(am+ai-vi-vm))
			r.sup[2] = -s * (mp + mi)
		}
		r.diag[0] = -s*(vi*(mp*am+mm*ap)+vm*(mp*ai+2*mi*ap)+vp*(mm*ai+2*mi*am)-
			mp*vi*vm-mm*vi*vp-2*mi*vp*vm-mp*bm-2*mi*b0-mm*bp) +
			vi*(1-vi/ai)*(ai*b0-bp*vm-bm*vp+ai*vm*vp)
		r.diag[1] = -s*(mp*(vi+vm-ai-am)+mm*(vi+vp-ai-ap)+2*mi*(vm+vp-am-ap)) -
			vi*vi*(ap+am) + vi*(bm+2*b0+bp) + vm*bp + vp*bm -
			vi*vm*(2*ap+ai) - vi*vp*(2*am+ai) - ai*vm*vp +
			vi*vi*(vm+vp) + 2*vi*vm*vp - ai*b0
		r.diag[2] = s*(mp+2*mi+mm) - bp - b0 - bm +
			ap*(2*vi+vm) + am*(2*vi+vp) + ai*(vi+vm+vp) -
			vi*vi - 2*vi*(vm+vp) - vm*vp
		r.diag[3] = vp + 2*vi + vm - ap - ai - am
	}
	return &block{
		rows:       rows,
		sigma:      p.lo - 1e-3*(p.hi-p.lo),
		lo:         p.lo,
		hi:         p.hi,
		denseLimit: p.denseLimit,
		seed:       p.seed,
	}
}

// Dense 展开为 4nz 阶稠密矩阵
func (b *block) Dense() *mat.Dense {
	nz := len(b.rows)
	a := mat.NewDense(4*nz, 4*nz, nil)
	for i, r := range b.rows {
		a.Set(i, nz+i, 1)
		a.Set(nz+i, 2*nz+i, 1)
		a.Set(2*nz+i, 3*nz+i, 1)
		row := 3*nz + i
		for k := 0; k < 3; k++ {
			if i > 0 {
				a.Set(row, k*nz+i-1, r.sub[k])
			}
			if i < nz-1 {
				a.Set(row, k*nz+i+1, r.sup[k])
			}
		}
		for k := 0; k < 4; k++ {
			a.Set(row, k*nz+i, r.diag[k])
		}
	}
	return a
}

func (b *block) modes(nE int) ([]mode, error) {
	if b.useDense() {
		return b.denseModes()
	}
	return b.shiftInvertModes(nE)
}

// denseModes 稠密非对称本征分解
func (b *block) denseModes() ([]mode, error) {
	nz := len(b.rows)
	var eig mat.Eigen
	if !eig.Factorize(b.Dense(), mat.EigenRight) {
		return nil, fmt.Errorf("kane eigen decomposition: %w", types.ErrSingularMatrix)
	}
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)
	out := make([]mode, 0, len(values))
	for c, v := range values {
		vec := make([]float64, nz)
		for i := range vec {
			vec[i] = real(vecs.At(i, c))
		}
		out = append(out, mode{value: v, vector: vec})
	}
	return out, nil
}

// shiftInvertModes 自势阱底向上逐窗口移位求逆
// 每个窗口求得距 σ 最近的 k 个本征值, 记第 k 个的距离为 r,
// 则 (σ-r, σ+r) 内的实本征值已全部求得; 下一窗口以 σ+r 为移位点,
// 直到求得 nE 个态或覆盖到势垒顶
func (b *block) shiftInvertModes(nE int) ([]mode, error) {
	if !(b.hi > b.lo) {
		return nil, nil
	}
	k := max(types.MinStates, nE)
	span := b.hi - b.lo
	dup := 1e-9 * span
	sigma, floor := b.sigma, math.Inf(-1)
	var out []mode
	for w := 0; w < maxWindows(len(b.rows), k); w++ {
		found, covered, err := b.window(sigma, k)
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			e := real(m.value)
			if imag(m.value) < 0 || e <= floor+dup || e <= b.lo || e >= b.hi {
				continue
			}
			out = append(out, m)
		}
		if covered <= floor {
			return nil, fmt.Errorf("kane shift-invert stalled at %g eV: %w", sigma, types.ErrNotConverged)
		}
		floor = covered
		if covered >= b.hi || nE > 0 && len(out) >= nE {
			return out, nil
		}
		sigma = covered
	}
	return nil, fmt.Errorf("kane shift-invert: window limit reached below %g eV: %w", floor, types.ErrNotConverged)
}

// maxWindows 窗口数量上限, 每个窗口至少前进 k/2 个本征值
func maxWindows(nz, k int) int { return 8*nz/k + 2 }

// window 以 σ 为移位点求最近的 k 个本征对, edge 为 σ 加上其中最远的距离
func (b *block) window(sigma float64, k int) ([]mode, float64, error) {
	op, err := newShiftInvert(b.rows, sigma)
	if err != nil {
		// σ 恰为本征值时微移
		sigma += 1e-7 * (b.hi - b.lo)
		if op, err = newShiftInvert(b.rows, sigma); err != nil {
			return nil, 0, err
		}
	}
	ss := &maths.Subspace{
		K:       k,
		Block:   2*k + 10,
		MaxIter: 500,
		Tol:     1e-9,
		Seed:    b.seed,
		Wanted: func(theta complex128) bool {
			e := real(complex(sigma, 0) + 1/theta)
			return e > b.lo && e < b.hi
		},
	}
	ritz, err := ss.Solve(op)
	if err != nil {
		if errors.Is(err, maths.ErrNoConvergence) {
			return nil, 0, fmt.Errorf("kane shift-invert at %g eV: %v: %w", sigma, err, types.ErrNotConverged)
		}
		return nil, 0, err
	}
	nz := len(b.rows)
	out := make([]mode, 0, len(ritz))
	reach := math.Inf(1)
	for _, r := range ritz {
		if cmplx.Abs(r.Value) == 0 {
			continue
		}
		// Ritz 值按模降序, 最后一个距 σ 最远
		reach = 1 / cmplx.Abs(r.Value)
		vec := make([]float64, nz)
		for i := range vec {
			vec[i] = real(r.Vector[i])
		}
		out = append(out, mode{value: complex(sigma, 0) + 1/r.Value, vector: vec})
	}
	return out, sigma + reach, nil
}

// shiftInvert (A-σI)⁻¹ 的结构化求解
//
//	y2 = b1 + σy1, y3 = b2 + σy2, y4 = b3 + σy3
//	Q(σ)·y1 = b4 - A1b1 - A2(b2+σb1) - (A3-σ)(b3+σb2+σ²b1)
//	Q(σ) = A0 + σA1 + σ²A2 + σ³(A3-σ)
type shiftInvert struct {
	rows  []kaneRow
	sigma float64
	lu    maths.BandLU
	rhs   []float64
	t1    []float64
	t2    []float64
}

func newShiftInvert(rows []kaneRow, sigma float64) (*shiftInvert, error) {
	nz := len(rows)
	q := maths.NewTridiagonal(nz)
	s1, s2, s3 := sigma, sigma*sigma, sigma*sigma*sigma
	for i, r := range rows {
		q.Diag[i] = r.diag[0] + s1*r.diag[1] + s2*r.diag[2] + s3*(r.diag[3]-sigma)
		if i < nz-1 {
			q.Sup[i] = r.sup[0] + s1*r.sup[1] + s2*r.sup[2]
			n := rows[i+1]
			q.Sub[i] = n.sub[0] + s1*n.sub[1] + s2*n.sub[2]
		}
	}
	lu, err := maths.NewBandLU(nz)
	if err != nil {
		return nil, err
	}
	if err := lu.Decompose(q); err != nil {
		return nil, fmt.Errorf("shift-invert at %g eV: %v: %w", sigma, err, types.ErrSingularMatrix)
	}
	return &shiftInvert{
		rows:  rows,
		sigma: sigma,
		lu:    lu,
		rhs:   make([]float64, nz),
		t1:    make([]float64, nz),
		t2:    make([]float64, nz),
	}, nil
}

func (s *shiftInvert) Dim() int { return 4 * len(s.rows) }

// apply 计算 (A_k·v)_i
func (s *shiftInvert) apply(k, i int, v []float64) float64 {
	r := &s.rows[i]
	out := r.diag[k] * v[i]
	if k == 3 {
		return out
	}
	if i > 0 {
		out += r.sub[k] * v[i-1]
	}
	if i < len(v)-1 {
		out += r.sup[k] * v[i+1]
	}
	return out
}

func (s *shiftInvert) Apply(dst, src []float64) error {
	nz := len(s.rows)
	b1, b2, b3, b4 := src[:nz], src[nz:2*nz], src[2*nz:3*nz], src[3*nz:]
	sg := s.sigma
	// t1 = b2+σb1, t2 = b3+σb2+σ²b1
	for i := 0; i < nz; i++ {
		s.t1[i] = b2[i] + sg*b1[i]
		s.t2[i] = b3[i] + sg*s.t1[i]
	}
	for i := 0; i < nz; i++ {
		s.rhs[i] = b4[i] - s.apply(1, i, b1) - s.apply(2, i, s.t1) - s.apply(3, i, s.t2) + sg*s.t2[i]
	}
	y1, y2, y3, y4 := dst[:nz], dst[nz:2*nz], dst[2*nz:3*nz], dst[3*nz:]
	if err := s.lu.SolveReuse(s.rhs, y1); err != nil {
		return err
	}
	for i := 0; i < nz; i++ {
		y2[i] = b1[i] + sg*y1[i]
		y3[i] = b2[i] + sg*y2[i]
		y4[i] = b3[i] + sg*y3[i]
	}
	if floats.HasNaN(y1) || math.IsInf(floats.Norm(y1, math.Inf(1)), 0) {
		return fmt.Errorf("shift-invert solve: %w", types.ErrSingularMatrix)
	}
	return nil
}
