package debug

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	*Record
}

// NewCharts 创建图表记录
func NewCharts(r *Record) *Charts { return &Charts{Record: r} }

func legend() charts.GlobalOpts {
	return charts.WithLegendOpts(opts.Legend{
		Type:   "scroll",
		Orient: "vertical",
		Right:  "10",
		Top:    "20",
		Bottom: "20",
	})
}

func theme() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Theme: types.ThemeWesteros,
	})
}

// xy 数值坐标点
func xy(x, y float64) opts.LineData {
	return opts.LineData{Value: []interface{}{x, y}}
}

// band 能带与波函数
func (c *Charts) band(f *Frame) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		theme(),
		charts.WithTitleOpts(opts.Title{
			Title:    "能带结构",
			Subtitle: fmt.Sprintf("K = %g kV/cm", f.K),
		}),
		legend(),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "z [Å]", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "V [meV]", Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	series := make([]charts.SingleSeries, 0, len(f.Psi)+1)
	add := func(name string, y []float64) {
		data := make([]opts.LineData, len(c.Z))
		for i, z := range c.Z {
			data[i] = xy(z, y[i])
		}
		s := charts.SingleSeries{Name: name, Data: data, Type: types.ChartLine}
		s.InitSeriesDefaultOpts(line.BaseConfiguration)
		s.ShowSymbol = opts.Bool(false)
		series = append(series, s)
	}
	add("V", f.V)
	for i, psi := range f.Psi {
		add(fmt.Sprintf("E%d", i+1), psi)
	}
	line.MultiSeries = series
	return line
}

// ladder 能级
func (c *Charts) ladder(f *Frame) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		theme(),
		charts.WithTitleOpts(opts.Title{Title: "束缚态能级"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "E [meV]", Scale: opts.Bool(true)}),
	)
	names := make([]string, len(f.Energies))
	data := make([]opts.ScatterData, len(f.Energies))
	for i, e := range f.Energies {
		names[i] = fmt.Sprint(i + 1)
		data[i] = opts.ScatterData{Value: e, Symbol: "circle", SymbolSize: 14}
	}
	sc.SetXAxis(names).AddSeries("E", data)
	return sc
}

// transitions 相邻能级跃迁频率
func (c *Charts) transitions(f *Frame) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		theme(),
		charts.WithTitleOpts(opts.Title{Title: "跃迁频率"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "f [THz]"}),
	)
	names := make([]string, len(f.Transitions))
	data := make([]opts.BarData, len(f.Transitions))
	for i, t := range f.Transitions {
		names[i] = fmt.Sprintf("%d→%d", i+2, i+1)
		data[i] = opts.BarData{Value: t}
	}
	bar.SetXAxis(names).AddSeries("f", data)
	return bar
}

// fan 能级随电场变化
func (c *Charts) fan() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		theme(),
		charts.WithTitleOpts(opts.Title{Title: "能级随电场变化"}),
		legend(),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "K [kV/cm]", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "E [meV]", Scale: opts.Bool(true)}),
	)
	var n int
	for _, f := range c.Frames {
		n = max(n, len(f.Energies))
	}
	for i := 0; i < n; i++ {
		data := make([]opts.LineData, 0, len(c.Frames))
		for _, f := range c.Frames {
			if i < len(f.Energies) {
				data = append(data, xy(f.K, f.Energies[i]))
			}
		}
		line.AddSeries(fmt.Sprintf("E%d", i+1), data)
	}
	return line
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	f := c.Last()
	if f == nil {
		return fmt.Errorf("no result recorded")
	}
	page := components.NewPage().SetPageTitle("schrodinger")
	page.AddCharts(
		c.band(f),
		c.ladder(f),
		c.transitions(f),
	)
	if len(c.Frames) > 1 {
		page.AddCharts(c.fan())
	}
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
