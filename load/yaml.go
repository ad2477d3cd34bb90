package load

import (
	"fmt"
	"io"

	"schrodinger/types"

	"gopkg.in/yaml.v3"
)

// document YAML 结构描述
//
//	material: AlGaAs
//	dz: 0.6
//	layers:
//	  - [225, 0.2]
//	  - [80, 0]
type document struct {
	Material string      `yaml:"material"`
	Dz       *float64    `yaml:"dz"`
	K        *float64    `yaml:"k"`
	Padding  *float64    `yaml:"padding"`
	Layers   [][]float64 `yaml:"layers"`
}

// YAML 加载 YAML 结构描述
func YAML(r io.Reader) (*Structure, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml: %v: %w", err, types.ErrMalformedInput)
	}
	comp, err := FromArray(doc.Layers)
	if err != nil {
		return nil, err
	}
	st := &Structure{Header: map[string]string{}, Composition: comp}
	if doc.Material != "" {
		st.Header["material"] = doc.Material
	}
	for name, v := range map[string]*float64{"dz": doc.Dz, "k": doc.K, "padding": doc.Padding} {
		if v != nil {
			st.Header[name] = fmt.Sprint(*v)
		}
	}
	return st, nil
}
