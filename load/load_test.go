package load

import (
	"bytes"
	"errors"
	"testing"

	"schrodinger/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
# 单量子阱
.material AlGaAs
.dz 0.6

225 0.2
80	0
// 右侧势垒
225 0.2
`

// TestReader 文本格式解析
func TestReader(t *testing.T) {
	st, err := String(sample)
	require.NoError(t, err)
	require.Len(t, st.Composition, 3)
	assert.Equal(t, types.Layer{Thickness: 80, Alloy: 0}, st.Composition[1])
	assert.Equal(t, "AlGaAs", st.Text("material", ""))
	dz, err := st.Float("dz", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.6, dz)
	k, err := st.Float("k", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, k)
	assert.Equal(t, 530.0, st.Composition.Length())
}

// TestReaderMalformed 错误行
func TestReaderMalformed(t *testing.T) {
	cases := map[string]string{
		"列数":  "225 0.2 1\n",
		"非数值": "225 abc\n",
		"单列":  "225\n",
		"负厚度": "-5 0.1\n",
		"组分":  "10 1.5\n",
		"空":   "# nothing\n\n",
		"指令":  ".material\n10 0\n",
	}
	for name, text := range cases {
		_, err := String(text)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, types.ErrMalformedInput), name)
	}
}

// TestFromArray 数组构建
func TestFromArray(t *testing.T) {
	comp, err := FromArray([][]float64{{225, 0.2}, {80, 0}, {225, 0.2}})
	require.NoError(t, err)
	require.NoError(t, comp.Validate())
	_, err = FromArray([][]float64{{225}})
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
	_, err = FromArray(nil)
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
}

// TestExport 导出后重新加载
func TestExport(t *testing.T) {
	st, err := String(sample)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, st))
	again, err := Reader(&buf)
	require.NoError(t, err)
	assert.Equal(t, st.Composition, again.Composition)
	assert.Equal(t, st.Header, again.Header)
}

// TestYAML YAML 格式
func TestYAML(t *testing.T) {
	src := "material: InGaAs/InAlAs\ndz: 0.5\nlayers:\n  - [100, 1]\n  - [60, 0]\n  - [100, 1]\n"
	st, err := YAML(bytes.NewBufferString(src))
	require.NoError(t, err)
	assert.Len(t, st.Composition, 3)
	assert.Equal(t, "InGaAs/InAlAs", st.Text("material", ""))
	dz, err := st.Float("dz", 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, dz)

	_, err = YAML(bytes.NewBufferString("layers: [[1, 2, 3]]\n"))
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
	_, err = YAML(bytes.NewBufferString("layers: {"))
	assert.True(t, errors.Is(err, types.ErrMalformedInput))
}
