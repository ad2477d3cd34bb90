package debug

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot 输出最近一次结果的能带图 PNG
type Plot struct {
	*Record
	Width, Height vg.Length
}

// NewPlot 创建 PNG 输出, 默认 8×5 英寸
func NewPlot(r *Record) *Plot {
	return &Plot{Record: r, Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

func (p *Plot) xys(y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(p.Z))
	for i, z := range p.Z {
		pts[i].X, pts[i].Y = z, y[i]
	}
	return pts
}

// build 构建图像
func (p *Plot) build() (*plot.Plot, error) {
	f := p.Last()
	if f == nil {
		return nil, fmt.Errorf("no result recorded")
	}
	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("Bandstructure profile, K = %g kV/cm", f.K)
	plt.X.Label.Text = "z [Å]"
	plt.Y.Label.Text = "V [meV]"
	lines := []any{"V", p.xys(f.V)}
	for i, psi := range f.Psi {
		lines = append(lines, fmt.Sprintf("E%d = %.3f meV", i+1, f.Energies[i]), p.xys(psi))
	}
	if err := plotutil.AddLines(plt, lines...); err != nil {
		return nil, err
	}
	return plt, nil
}

// Render 写入 PNG
func (p *Plot) Render(w io.Writer) error {
	plt, err := p.build()
	if err != nil {
		return err
	}
	wt, err := plt.WriterTo(p.Width, p.Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
