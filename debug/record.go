// Package debug 记录求解结果并输出 JSON, HTML 图表与 PNG 图像
package debug

import (
	"encoding/json"
	"io"
	"math"

	"schrodinger/types"
)

// WavefunctionScale |ψ|² [1/Å] 到显示能量 [meV] 的缩放
const WavefunctionScale = 1e3

// Frame 单个电场值的显示数据
type Frame struct {
	K           float64     `json:"k"`           // 电场 [kV/cm]
	V           []float64   `json:"v"`           // 势能 [meV]
	Energies    []float64   `json:"energies"`    // 能级 [meV]
	Transitions []float64   `json:"transitions"` // 相邻能级跃迁 [THz]
	Psi         [][]float64 `json:"psi"`         // |ψ|² 以能级为基线 [meV]
}

// Record 记录历史求解结果
type Record struct {
	Const   types.Constants `json:"-"`
	Padding float64         `json:"padding"` // 两端共裁去的长度 [Å]
	Z       []float64       `json:"z"`       // 坐标 [Å]
	Frames  []Frame         `json:"frames"`
}

// NewRecord 创建记录
func NewRecord(c types.Constants, padding float64) *Record {
	return &Record{Const: c, Padding: padding}
}

// window 裁去两端 padding/2 后的下标范围
func (r *Record) window(z []float64) (lo, hi int) {
	n := len(z)
	if n < 2 || r.Padding <= 0 {
		return 0, n
	}
	dz := (z[1] - z[0]) / r.Const.Angstrom
	npad := int(r.Padding / dz / 2)
	if 2*npad >= n {
		return 0, n
	}
	return npad, n - npad
}

// Update 记录数据
func (r *Record) Update(k float64, set *types.WavefunctionSet) {
	c := r.Const
	lo, hi := r.window(set.Z)
	if r.Z == nil {
		r.Z = make([]float64, 0, hi-lo)
		for _, z := range set.Z[lo:hi] {
			r.Z = append(r.Z, math.Round(z/c.Angstrom*1e6)/1e6)
		}
	}
	f := Frame{
		K:           k,
		V:           make([]float64, 0, hi-lo),
		Energies:    set.EnergiesMeV(c),
		Transitions: set.TransitionsTHz(c),
	}
	for _, v := range set.V[lo:hi] {
		f.V = append(f.V, c.ToMeV(v))
	}
	for i, s := range set.States {
		line := make([]float64, 0, hi-lo)
		for _, p := range s.Psi[lo:hi] {
			line = append(line, WavefunctionScale*p*p*c.Angstrom+f.Energies[i])
		}
		f.Psi = append(f.Psi, line)
	}
	r.Frames = append(r.Frames, f)
}

// Last 最近一次记录, 无记录时为空
func (r *Record) Last() *Frame {
	if len(r.Frames) == 0 {
		return nil
	}
	return &r.Frames[len(r.Frames)-1]
}

// Render 格式和输出内容
func (r *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(r) }
