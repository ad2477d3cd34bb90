package types

import (
	"fmt"
	"strings"
)

// Method 数值方法
type Method int

// 数值方法常量定义
const (
	MethodUnknown Method = iota // 未知方法
	FDM                         // 有限差分
	TMM                         // 传输矩阵
)

// NonParabolicity 非抛物性模型
type NonParabolicity int

// 非抛物性模型常量定义
const (
	TypeUnknown NonParabolicity = iota // 未知模型
	Parabolic                          // 抛物线
	Taylor                             // 一阶泰勒
	Kane                               // Kane 模型
	Ekenberg                           // Ekenberg 模型
)

var methodString = map[Method]string{
	FDM: "FDM",
	TMM: "TMM",
}

var typeString = map[NonParabolicity]string{
	Parabolic: "Parabolic",
	Taylor:    "Taylor",
	Kane:      "Kane",
	Ekenberg:  "Ekenberg",
}

// String 返回方法名称
func (m Method) String() string {
	if s, ok := methodString[m]; ok {
		return s
	}
	return "Unknown"
}

// String 返回模型名称
func (t NonParabolicity) String() string {
	if s, ok := typeString[t]; ok {
		return s
	}
	return "Unknown"
}

// ParseMethod 通过名称获取方法, 不区分大小写
func ParseMethod(name string) (Method, error) {
	for m, s := range methodString {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return MethodUnknown, fmt.Errorf("method %q: %w", name, ErrUnsupportedCombination)
}

// ParseNonParabolicity 通过名称获取非抛物性模型, 不区分大小写
func ParseNonParabolicity(name string) (NonParabolicity, error) {
	for t, s := range typeString {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("non-parabolicity %q: %w", name, ErrUnsupportedCombination)
}
