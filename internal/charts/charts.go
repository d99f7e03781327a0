// Package charts renders a dashboard's aggregate views as an interactive
// ECharts HTML page.
package charts

import (
	"fmt"
	"io"
	"sort"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
)

const (
	lengthAxis = "Review Length (characters)"
	scoreAxis  = "Sentiment Score"
)

// Render writes an HTML page with the bar chart of mean scores and the two
// length-vs-score scatter plots. Views the dashboard has no data for are
// left out.
func Render(w io.Writer, d *analysis.Dashboard) error {
	if err := newPage(d).Render(w); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}

func newPage(d *analysis.Dashboard) *components.Page {
	page := components.NewPage()
	page.PageTitle = "ReviewLens"
	if len(d.Means) > 0 {
		page.AddCharts(meanBar(d.Means))
	}
	if len(d.Points) > 0 {
		page.AddCharts(scatter(d.Points), scatterByProduct(d.Points))
	}
	return page
}

func meanBar(means []analysis.GroupMean) *echarts.Bar {
	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: "Sentiment score by product"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: "Mean " + scoreAxis}),
	)
	names := make([]string, 0, len(means))
	items := make([]opts.BarData, 0, len(means))
	for _, g := range means {
		names = append(names, g.Product)
		items = append(items, opts.BarData{Name: g.Product, Value: g.Mean})
	}
	bar.SetXAxis(names).AddSeries("SENTIMENT_SCORE", items)
	return bar
}

func newScatter(title string) *echarts.Scatter {
	sc := echarts.NewScatter()
	sc.SetGlobalOptions(
		echarts.WithTitleOpts(opts.Title{Title: title}),
		echarts.WithXAxisOpts(opts.XAxis{Name: lengthAxis, Type: "value"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: scoreAxis, Type: "value"}),
	)
	return sc
}

func scatterData(p analysis.Point) opts.ScatterData {
	return opts.ScatterData{Name: p.Text, Value: []interface{}{p.Length, p.Score}}
}

func scatter(pts []analysis.Point) *echarts.Scatter {
	sc := newScatter("Sentiment vs. Review Length")
	data := make([]opts.ScatterData, 0, len(pts))
	for _, p := range pts {
		data = append(data, scatterData(p))
	}
	sc.AddSeries("reviews", data)
	return sc
}

// scatterByProduct emits one series per product so each gets its own color.
func scatterByProduct(pts []analysis.Point) *echarts.Scatter {
	sc := newScatter("Sentiment vs. Review Length by product")
	series := map[string][]opts.ScatterData{}
	for _, p := range pts {
		series[p.Product] = append(series[p.Product], scatterData(p))
	}
	names := make([]string, 0, len(series))
	for k := range series {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		sc.AddSeries(k, series[k])
	}
	return sc
}
