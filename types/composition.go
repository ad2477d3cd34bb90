package types

import "fmt"

// Layer 单层结构
type Layer struct {
	Thickness float64 `yaml:"thickness" json:"thickness"` // 厚度 [Å]
	Alloy     float64 `yaml:"alloy" json:"alloy"`         // 合金组分 0 为阱材料
}

// Composition 异质结构层序列
type Composition []Layer

// Validate 检查层序列
func (c Composition) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("empty composition: %w", ErrInvalidGrid)
	}
	for i, l := range c {
		if !(l.Thickness > 0) {
			return fmt.Errorf("layer %d thickness %g: %w", i, l.Thickness, ErrInvalidGrid)
		}
		if l.Alloy < 0 || l.Alloy > 1 {
			return fmt.Errorf("layer %d alloy fraction %g: %w", i, l.Alloy, ErrInvalidGrid)
		}
	}
	return nil
}

// Length 结构总厚度 [Å]
func (c Composition) Length() (sum float64) {
	for _, l := range c {
		sum += l.Thickness
	}
	return sum
}
