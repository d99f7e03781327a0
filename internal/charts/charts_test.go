package charts

import (
	"bytes"
	"strings"
	"testing"

	echarts "github.com/go-echarts/go-echarts/v2/charts"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
)

var points = []analysis.Point{
	{Length: 10, Score: 0.5, Product: "Earbuds", Text: "great sound"},
	{Length: 4, Score: -0.2, Product: "Charger", Text: "meh"},
	{Length: 7, Score: 0.1, Product: "Earbuds", Text: "too quiet"},
}

func TestPageWithoutMeansOmitsBar(t *testing.T) {
	page := newPage(&analysis.Dashboard{Points: points})
	if len(page.Charts) != 2 {
		t.Fatalf("charts = %d, want the two scatter plots", len(page.Charts))
	}
	for i, c := range page.Charts {
		if _, ok := c.(*echarts.Bar); ok {
			t.Fatalf("chart %d is a bar chart", i)
		}
	}

	if empty := newPage(&analysis.Dashboard{}); len(empty.Charts) != 0 {
		t.Fatalf("empty dashboard rendered %d charts", len(empty.Charts))
	}
}

func TestPageWithMeans(t *testing.T) {
	d := &analysis.Dashboard{
		Means:  []analysis.GroupMean{{Product: "Charger", Count: 1, Mean: -0.2}, {Product: "Earbuds", Count: 2, Mean: 0.3}},
		Points: points,
	}
	page := newPage(d)
	if len(page.Charts) != 3 {
		t.Fatalf("charts = %d, want 3", len(page.Charts))
	}
	bar, ok := page.Charts[0].(*echarts.Bar)
	if !ok {
		t.Fatalf("first chart is %T, want bar", page.Charts[0])
	}
	if len(bar.MultiSeries) != 1 {
		t.Fatalf("bar series = %d", len(bar.MultiSeries))
	}

	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "ReviewLens") {
		t.Fatalf("page title missing")
	}
}

func TestScatterByProductOneSeriesPerProduct(t *testing.T) {
	sc := scatterByProduct(points)
	if len(sc.MultiSeries) != 2 {
		t.Fatalf("series = %d, want 2", len(sc.MultiSeries))
	}
	if sc.MultiSeries[0].Name != "Charger" || sc.MultiSeries[1].Name != "Earbuds" {
		t.Fatalf("series names = %q, %q", sc.MultiSeries[0].Name, sc.MultiSeries[1].Name)
	}
	if all := scatter(points); len(all.MultiSeries) != 1 {
		t.Fatalf("combined scatter series = %d", len(all.MultiSeries))
	}
}
