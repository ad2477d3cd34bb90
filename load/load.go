// Package load 读取异质结构层描述。
//
// 文本格式每行一层, 两列分别为厚度 [Å] 与合金组分:
//
//	# 注释
//	.material AlGaAs
//	.dz 0.6
//	225 0.2
//	80  0
//	225 0.2
//
// 以 '.' 开头的行为设置指令, 空行与 '#' '//' 注释行被忽略。
package load

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"schrodinger/types"
)

// Structure 结构描述
type Structure struct {
	Header      map[string]string // 设置指令
	Composition types.Composition // 层序列
}

// String 加载文本结构描述
func String(s string) (*Structure, error) {
	return Reader(strings.NewReader(s))
}

// File 加载文本结构描述文件
func File(filename string) (*Structure, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return YAML(file)
	}
	return Reader(file)
}

// Reader 加载文本结构描述
func Reader(r io.Reader) (*Structure, error) {
	st := &Structure{Header: map[string]string{}}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}
		fields := strings.Fields(text)
		// 解析指令
		if fields[0][0] == '.' {
			if len(fields) != 2 {
				return nil, fmt.Errorf("第 %d 行: 指令格式错误 %q: %w", line, text, types.ErrMalformedInput)
			}
			st.Header[strings.ToLower(fields[0][1:])] = fields[1]
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("第 %d 行: 需要 2 列, 得到 %d 列: %w", line, len(fields), types.ErrMalformedInput)
		}
		var v [2]float64
		for i := range v {
			f, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: 无效数值 %q: %w", line, fields[i], types.ErrMalformedInput)
			}
			v[i] = f
		}
		l := types.Layer{Thickness: v[0], Alloy: v[1]}
		if err := checkLayer(l); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		st.Composition = append(st.Composition, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(st.Composition) == 0 {
		return nil, fmt.Errorf("没有层定义: %w", types.ErrMalformedInput)
	}
	return st, nil
}

// FromArray 由 [厚度, 组分] 数组构建层序列
func FromArray(a [][]float64) (types.Composition, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("没有层定义: %w", types.ErrMalformedInput)
	}
	comp := make(types.Composition, len(a))
	for i, row := range a {
		if len(row) != 2 {
			return nil, fmt.Errorf("第 %d 层: 需要 2 个值, 得到 %d 个: %w", i, len(row), types.ErrMalformedInput)
		}
		comp[i] = types.Layer{Thickness: row[0], Alloy: row[1]}
		if err := checkLayer(comp[i]); err != nil {
			return nil, fmt.Errorf("第 %d 层: %w", i, err)
		}
	}
	return comp, nil
}

// checkLayer 检查单层取值
func checkLayer(l types.Layer) error {
	if !(l.Thickness > 0) {
		return fmt.Errorf("厚度必须为正 %g: %w", l.Thickness, types.ErrMalformedInput)
	}
	if !(l.Alloy >= 0 && l.Alloy <= 1) {
		return fmt.Errorf("组分超出 [0,1] %g: %w", l.Alloy, types.ErrMalformedInput)
	}
	return nil
}

// Float 读取数值指令, 不存在时返回默认值
func (st *Structure) Float(name string, def float64) (float64, error) {
	s, ok := st.Header[name]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf(".%s %q: %w", name, s, types.ErrMalformedInput)
	}
	return f, nil
}

// Text 读取文本指令, 不存在时返回默认值
func (st *Structure) Text(name, def string) string {
	if s, ok := st.Header[name]; ok {
		return s
	}
	return def
}

// Export 导出文本格式
func Export(w io.Writer, st *Structure) error {
	writer := bufio.NewWriter(w)
	keys := make([]string, 0, len(st.Header))
	for k := range st.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(writer, ".%s %s\n", k, st.Header[k])
	}
	for _, l := range st.Composition {
		writer.WriteString(strconv.FormatFloat(l.Thickness, 'g', -1, 64))
		writer.WriteRune(' ')
		writer.WriteString(strconv.FormatFloat(l.Alloy, 'g', -1, 64))
		writer.WriteRune('\n')
	}
	return writer.Flush()
}
