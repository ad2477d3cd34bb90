package types

import (
	"errors"
	"fmt"
)

// 错误分类
var (
	ErrInvalidGrid            = errors.New("invalid grid")
	ErrMalformedInput         = errors.New("malformed input")
	ErrUnknownMaterial        = errors.New("unknown material")
	ErrUnsupportedCombination = errors.New("unsupported solver combination")
	ErrSingularMatrix         = errors.New("singular matrix")
	ErrNoBoundStates          = errors.New("no bound states found")
	ErrNotConverged           = errors.New("not converged")
)

// RefineError 单个候选能级细化失败
// 扫描不会因此中止, 该候选被跳过并记录
type RefineError struct {
	Lo, Hi float64 // 候选区间 [J]
	Err    error
}

func (e *RefineError) Error() string {
	return fmt.Sprintf("refine [%g, %g]: %v", e.Lo, e.Hi, e.Err)
}

func (e *RefineError) Unwrap() error { return e.Err }
