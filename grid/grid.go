// Package grid 将层序列离散为均匀网格, 生成每个网格点的有效质量、势能与非抛物性系数。
package grid

import (
	"fmt"
	"math"

	"schrodinger/material"
	"schrodinger/types"

	"gonum.org/v1/gonum/floats"
)

// Grid 均匀网格
// 除 SetK 修改势能外, 构建后只读; 并发扫描时每个任务持有自己的 Clone
type Grid struct {
	Const    types.Constants
	Material material.Material
	Dz       float64   // 网格间距 [Å]
	K        float64   // 外加电场 [kV/cm]
	Z        []float64 // 坐标 [m]
	V        []float64 // 含电场倾斜的势能 [J]
	Meff     []float64 // 有效质量 [kg]
	Alloy    []float64 // 合金组分

	vBase  []float64 // 无电场势能 [J]
	alphaK []float64 // Kane 系数 [1/J]
	alphaE []float64 // Ekenberg 系数 [1/J]
	dE     float64   // 能量扫描步长 [J]
	deMeV  float64
	bounds []int // 层边界所在网格点
}

// Option 网格选项
type Option func(*Grid)

// WithConstants 指定物理常量
func WithConstants(c types.Constants) Option { return func(g *Grid) { g.Const = c } }

// WithDE 指定能量扫描步长 [meV]
func WithDE(meV float64) Option { return func(g *Grid) { g.deMeV = meV } }

// WithK 指定外加电场 [kV/cm]
func WithK(k float64) Option { return func(g *Grid) { g.K = k } }

// New 由层序列构建网格
// 参数:
//
//	comp - 层序列
//	dz   - 网格间距 [Å]
//	mat  - 合金体系
//
// dz<=0, 层序列为空或网格点少于 3 时返回 ErrInvalidGrid
func New(comp types.Composition, dz float64, mat material.Material, opts ...Option) (*Grid, error) {
	if !(dz > 0) || math.IsInf(dz, 0) {
		return nil, fmt.Errorf("dz=%g: %w", dz, types.ErrInvalidGrid)
	}
	if err := comp.Validate(); err != nil {
		return nil, err
	}
	nz := int(math.Round(comp.Length() / dz))
	if nz < 3 {
		return nil, fmt.Errorf("nz=%d: %w", nz, types.ErrInvalidGrid)
	}
	g := &Grid{
		Const:    types.DefaultConstants,
		Material: mat,
		Dz:       dz,
		Z:        make([]float64, nz),
		V:        make([]float64, nz),
		Meff:     make([]float64, nz),
		Alloy:    make([]float64, nz),
		vBase:    make([]float64, nz),
		alphaK:   make([]float64, nz),
		alphaE:   make([]float64, nz),
	}
	g.deMeV = types.DefaultDE
	for _, opt := range opts {
		opt(g)
	}
	if !(g.deMeV > 0) {
		return nil, fmt.Errorf("dE=%g meV: %w", g.deMeV, types.ErrInvalidGrid)
	}
	g.dE = g.deMeV * g.Const.MeV
	c := g.Const
	// 按层分配组分
	layer, end := 0, comp[0].Thickness
	for i := 0; i < nz; i++ {
		pos := float64(i) * dz
		for layer < len(comp)-1 && pos >= end-1e-9*dz {
			layer++
			end += comp[layer].Thickness
			g.bounds = append(g.bounds, i)
		}
		x := comp[layer].Alloy
		g.Alloy[i] = x
		g.Z[i] = pos * c.Angstrom
		g.Meff[i] = mat.M.Interpolate(x) * c.M0
		g.vBase[i] = mat.V.Interpolate(x) * c.E
		g.alphaK[i] = mat.KaneAlpha(x) / c.E
		g.alphaE[i] = mat.EkenbergAlpha(x) / c.E
	}
	g.SetK(g.K)
	return g, nil
}

// NZ 网格点数量
func (g *Grid) NZ() int { return len(g.Z) }

// DzM 网格间距 [m]
func (g *Grid) DzM() float64 { return g.Dz * g.Const.Angstrom }

// DE 能量扫描步长 [J]
func (g *Grid) DE() float64 { return g.dE }

// SetDE 修改能量扫描步长 [J], dE<=0 时返回 ErrInvalidGrid 且不修改
func (g *Grid) SetDE(dE float64) error {
	if !(dE > 0) || math.IsInf(dE, 0) {
		return fmt.Errorf("dE=%g J: %w", dE, types.ErrInvalidGrid)
	}
	g.dE = dE
	g.deMeV = dE / g.Const.MeV
	return nil
}

// SetK 按外加电场重新计算势能
//
//	V[i] = Vbase[i] - K·z[i]·kVcm·e
func (g *Grid) SetK(k float64) {
	g.K = k
	scale := g.Const.KVcm * g.Const.E
	for i, z := range g.Z {
		g.V[i] = g.vBase[i] - k*z*scale
	}
}

// AlphaKane Kane 非抛物性系数 1/Eg [1/J]
func (g *Grid) AlphaKane() []float64 { return g.alphaK }

// AlphaEkenberg Ekenberg 非抛物性系数 [1/J]
func (g *Grid) AlphaEkenberg() []float64 { return g.alphaE }

// Interfaces 层边界所在网格点
func (g *Grid) Interfaces() []int { return g.bounds }

// Range 势能范围 (min V, max V)
func (g *Grid) Range() (lo, hi float64) {
	return floats.Min(g.V), floats.Max(g.V)
}

// Clone 深拷贝
func (g *Grid) Clone() *Grid {
	n := *g
	n.Z = append([]float64(nil), g.Z...)
	n.V = append([]float64(nil), g.V...)
	n.Meff = append([]float64(nil), g.Meff...)
	n.Alloy = append([]float64(nil), g.Alloy...)
	n.vBase = append([]float64(nil), g.vBase...)
	n.alphaK = append([]float64(nil), g.alphaK...)
	n.alphaE = append([]float64(nil), g.alphaE...)
	n.bounds = append([]int(nil), g.bounds...)
	return &n
}
