// Package band 提供四种非抛物性模型的局部波矢与界面匹配系数。
//
// 每个模型在网格点 j 与试探能量 E 处给出:
//
//	q(j,E)   局部波矢 (经典允许区为虚数, 禁区为实数)
//	dq/dE    波矢对能量的导数
//	c(j,E)   界面匹配系数 m_j(E)/m_{j-1}(E)·q_{j-1}/q_j
//	dc/dE    匹配系数对能量的导数
//
// 所有平方根取主值分支。j=0 时以自身作为前一点。
package band

import (
	"fmt"

	"schrodinger/grid"
	"schrodinger/types"
)

// Model 非抛物性模型接口
type Model interface {
	Type() types.NonParabolicity
	Wavevector(j int, e float64) complex128
	WavevectorDerivative(j int, e float64) complex128
	Coefficient(j int, e float64) complex128
	CoefficientDerivative(j int, e float64) complex128
}

// profile 网格数据快照
type profile struct {
	hbar2 float64
	m     []float64
	v     []float64
	alpha []float64
}

func newProfile(g *grid.Grid, alpha []float64) profile {
	return profile{
		hbar2: g.Const.HbarSq(),
		m:     append([]float64(nil), g.Meff...),
		v:     append([]float64(nil), g.V...),
		alpha: append([]float64(nil), alpha...),
	}
}

// prev 前一网格点
func prev(j int) int {
	if j > 0 {
		return j - 1
	}
	return 0
}

// New 按类型创建模型
func New(t types.NonParabolicity, g *grid.Grid) (Model, error) {
	switch t {
	case types.Parabolic:
		return &Parabolic{newProfile(g, nil)}, nil
	case types.Taylor:
		return &Taylor{newProfile(g, g.AlphaKane())}, nil
	case types.Kane:
		return &Kane{newProfile(g, g.AlphaKane())}, nil
	case types.Ekenberg:
		return &Ekenberg{newProfile(g, g.AlphaEkenberg())}, nil
	}
	return nil, fmt.Errorf("non-parabolicity %v: %w", t, types.ErrUnsupportedCombination)
}
