package types

// Constants 物理常量与单位换算
// 整个求解过程使用国际单位制: 长度 m, 能量 J, 质量 kg
type Constants struct {
	E        float64 // 元电荷 [C]
	Hbar     float64 // 约化普朗克常数 [J·s]
	M0       float64 // 自由电子质量 [kg]
	Angstrom float64 // 埃 [m]
	KVcm     float64 // kV/cm [V/m]
	MeV      float64 // meV [J]
}

// DefaultConstants 默认常量
var DefaultConstants = Constants{
	E:        1.602176462e-19,
	Hbar:     1.05457172647e-34,
	M0:       9.10938188e-31,
	Angstrom: 1e-10,
	KVcm:     1e5,
	MeV:      1.602176462e-22,
}

// HbarSq ħ²
func (c Constants) HbarSq() float64 { return c.Hbar * c.Hbar }

// ToMeV 能量换算 J -> meV
func (c Constants) ToMeV(e float64) float64 { return e / c.MeV }

// FromMeV 能量换算 meV -> J
func (c Constants) FromMeV(e float64) float64 { return e * c.MeV }

// THzPerMeV 1 THz 光子能量约为 4.1356 meV
const THzPerMeV = 1 / 4.1356

// 默认参数常量定义
var (
	Tolerance     = 1e-6 // 能量细化收敛容差 [meV]
	DefaultDE     = 0.1  // 能量扫描步长 [meV]
	MaxIterations = 200  // 细化最大迭代次数
	MinStates     = 20   // 移位求逆最少求解的本征对数量
	DenseLimit    = 1024 // 块矩阵稠密求解上限
)
