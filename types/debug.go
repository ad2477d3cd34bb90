package types

import "io"

// Debug 求解记录接口
type Debug interface {
	Update(k float64, set *WavefunctionSet)
	Render(w io.Writer) error
}
