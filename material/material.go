// Package material 提供异质结构合金体系的能带参数表。
// 每个体系由阱材料与垒材料两组参数组成, 中间组分按合金比例线性插值。
package material

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"schrodinger/types"
)

// Parameter 阱/垒参数对
type Parameter struct {
	Well float64
	Barr float64
}

// Interpolate 按合金组分线性插值, x=0 为阱材料
func (p Parameter) Interpolate(x float64) float64 {
	return p.Well + x*(p.Barr-p.Well)
}

// Material 合金体系参数
type Material struct {
	Name string
	M    Parameter // 有效质量 [m0]
	Eg   Parameter // 带隙 [eV]
	Egp  Parameter // L 谷带隙 [eV]
	D0   Parameter // 自旋轨道分裂能 [eV]
	P    Parameter // Kane 参数 P [eV·Å]
	Q    Parameter // Kane 参数 Q [eV·Å]
	V    Parameter // 导带偏移 [eV]
}

// KaneAlpha Kane 非抛物性系数 1/Eg [1/eV]
func (m Material) KaneAlpha(x float64) float64 {
	return 1 / m.Eg.Interpolate(x)
}

// EkenbergAlpha Ekenberg 非抛物性系数 [1/eV]
//
//	α = (1-m)²·f(Δ/Eg)/Eg·[1 - (Q/P)²·Eg/(Egp+Eg)]
//	f(y) = (3+4y+2y²)/((1+y)(3+2y))
func (m Material) EkenbergAlpha(x float64) float64 {
	mr := m.M.Interpolate(x)
	eg := m.Eg.Interpolate(x)
	egp := m.Egp.Interpolate(x)
	y := m.D0.Interpolate(x) / eg
	r := m.Q.Interpolate(x) / m.P.Interpolate(x)
	f := (3 + 4*y + 2*y*y) / ((1 + y) * (3 + 2*y))
	return math.Pow(1-mr, 2) * f / eg * (1 - r*r*eg/(egp+eg))
}

// 合金体系列表
var (
	AlGaAs = Material{
		Name: "AlGaAs",
		M:    Parameter{Well: 0.067, Barr: 0.15},
		Eg:   Parameter{Well: 1.424, Barr: 2.777},
		Egp:  Parameter{Well: 4.48, Barr: 4.55},
		D0:   Parameter{Well: 0.341, Barr: 0.3},
		P:    Parameter{Well: 9.88, Barr: 8.88},
		Q:    Parameter{Well: 8.68, Barr: 8.07},
		V:    Parameter{Well: 0, Barr: 0.67 * (2.777 - 1.424)},
	}
	AlGaSb = Material{
		Name: "AlGaSb",
		M:    Parameter{Well: 0.041, Barr: 0.12},
		Eg:   Parameter{Well: 0.81, Barr: 1.7},
		Egp:  Parameter{Well: 3.11, Barr: 3.53},
		D0:   Parameter{Well: 0.76, Barr: 0.67},
		P:    Parameter{Well: 9.69, Barr: 8.57},
		Q:    Parameter{Well: 8.25, Barr: 7.8},
		V:    Parameter{Well: 0, Barr: 0.55 * (1.7 - 0.81)},
	}
	InGaAsInAlAs = Material{
		Name: "InGaAs/InAlAs",
		M:    Parameter{Well: 0.043, Barr: 0.075},
		Eg:   Parameter{Well: 0.8161, Barr: 1.5296},
		Egp:  Parameter{Well: 4.508, Barr: 4.514},
		D0:   Parameter{Well: 0.3617, Barr: 0.3416},
		P:    Parameter{Well: 9.4189, Barr: 8.9476},
		Q:    Parameter{Well: 8.1712, Barr: 7.888},
		V:    Parameter{Well: 0, Barr: 0.73 * (1.5296 - 0.8161)},
	}
	InGaAsGaAsSb = Material{
		Name: "InGaAs/GaAsSb",
		M:    Parameter{Well: 0.043, Barr: 0.045},
		Eg:   Parameter{Well: 0.8161, Barr: 1.1786},
		Egp:  Parameter{Well: 4.508, Barr: 3.8393},
		D0:   Parameter{Well: 0.3617, Barr: 0.39637},
		P:    Parameter{Well: 9.4189, Barr: 9.7869},
		Q:    Parameter{Well: 8.1712, Barr: 8.4693},
		V:    Parameter{Well: 0, Barr: 1 * (1.1786 - 0.8161)},
	}
)

var table = map[string]Material{
	AlGaAs.Name:       AlGaAs,
	AlGaSb.Name:       AlGaSb,
	InGaAsInAlAs.Name: InGaAsInAlAs,
	InGaAsGaAsSb.Name: InGaAsGaAsSb,
}

// Get 通过名称获取合金体系, 不区分大小写
func Get(name string) (Material, error) {
	if m, ok := table[name]; ok {
		return m, nil
	}
	for k, m := range table {
		if strings.EqualFold(k, strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return Material{}, fmt.Errorf("%q, expected one of %v: %w", name, Names(), types.ErrUnknownMaterial)
}

// Names 已知体系名称
func Names() []string {
	names := make([]string, 0, len(table))
	for k := range table {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
