package types

// State 单个束缚态
type State struct {
	Energy float64   `json:"energy"` // 能量 [J]
	Psi    []float64 `json:"psi"`    // 归一化波函数 [m^-1/2]
}

// WavefunctionSet 一次求解的结果, 按能量升序
type WavefunctionSet struct {
	Method  Method          `json:"method"`
	Type    NonParabolicity `json:"type"`
	Z       []float64       `json:"z"` // 网格坐标 [m]
	V       []float64       `json:"v"` // 势能 [J]
	States  []State         `json:"states"`
	Skipped []error         `json:"-"` // 细化失败被跳过的候选
}

// Len 态数量
func (set *WavefunctionSet) Len() int { return len(set.States) }

// Energies 能量列表 [J]
func (set *WavefunctionSet) Energies() []float64 {
	out := make([]float64, len(set.States))
	for i, s := range set.States {
		out[i] = s.Energy
	}
	return out
}

// Wavefunctions 波函数列表
func (set *WavefunctionSet) Wavefunctions() [][]float64 {
	out := make([][]float64, len(set.States))
	for i, s := range set.States {
		out[i] = s.Psi
	}
	return out
}

// EnergiesMeV 能量列表 [meV]
func (set *WavefunctionSet) EnergiesMeV(c Constants) []float64 {
	out := set.Energies()
	for i := range out {
		out[i] = c.ToMeV(out[i])
	}
	return out
}

// TransitionsTHz 相邻能级跃迁频率 [THz]
func (set *WavefunctionSet) TransitionsTHz(c Constants) []float64 {
	e := set.EnergiesMeV(c)
	if len(e) < 2 {
		return nil
	}
	out := make([]float64, len(e)-1)
	for i := range out {
		out[i] = (e[i+1] - e[i]) * THzPerMeV
	}
	return out
}
