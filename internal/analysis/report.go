package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/reviewlens/internal/dataset"
)

// Options controls how a dashboard is assembled and rendered.
type Options struct {
	// PreviewRows limits the preview table; 0 means 5.
	PreviewRows int
	// Plot size for the text scatter plots, in characters.
	PlotWidth  int
	PlotHeight int
	// BarWidth is the width of the longest text bar.
	BarWidth int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{PreviewRows: 5, PlotWidth: 60, PlotHeight: 14, BarWidth: 40}
}

// Dashboard is every view derived from one table and one filter selection.
type Dashboard struct {
	Name     string      `json:"name,omitempty"`
	Stage    string      `json:"stage"`
	Message  string      `json:"message,omitempty"`
	Rows     int         `json:"rows"`
	Options  []string    `json:"options"`
	Selected string      `json:"selected"`
	Matched  int         `json:"matched"`
	Columns  []string    `json:"columns"`
	Preview  [][]string  `json:"preview"`
	Means    []GroupMean `json:"means"`
	Points   []Point     `json:"points"`
	Notices  []string    `json:"notices,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`

	opt Options
}

// Build assembles the dashboard for t filtered by selected. An unknown
// selection falls back to AllProducts. A nil table yields an empty dashboard.
func Build(t *dataset.Table, selected string, opt Options) *Dashboard {
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = 5
	}
	d := &Dashboard{Selected: AllProducts, Options: ProductOptions(t), opt: opt}
	if t == nil {
		return d
	}
	d.Name = t.Name
	d.Rows = t.Len()
	d.Columns = append([]string(nil), t.Columns...)
	d.Warnings = append(d.Warnings, t.Warnings...)
	for _, o := range d.Options {
		if o == selected {
			d.Selected = selected
			break
		}
	}

	view := Filter(t, d.Selected)
	d.Matched = len(view)
	for _, r := range view.Head(opt.PreviewRows) {
		row := make([]string, len(d.Columns))
		copy(row, r.Cells)
		d.Preview = append(d.Preview, row)
	}

	if t.HasColumn(dataset.ColScore) {
		for _, g := range GroupMeans(t) {
			if math.IsNaN(g.Mean) {
				d.Notices = append(d.Notices, fmt.Sprintf("No sentiment scores for product %q.", g.Product))
				continue
			}
			d.Means = append(d.Means, g)
		}
	} else {
		d.Notices = append(d.Notices, "Sentiment score column not found.")
	}

	pts, err := Points(t, view)
	if err != nil {
		d.Notices = append(d.Notices, err.Error())
	}
	d.Points = pts
	return d
}

// Markdown renders the dashboard in the compact sectioned report format.
func (d *Dashboard) Markdown() string {
	opt := d.opt
	if opt.PlotWidth <= 0 || opt.PlotHeight <= 0 || opt.BarWidth <= 0 {
		opt = DefaultOptions()
	}
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	if d.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", d.Name))
	}
	if d.Stage != "" {
		b.WriteString(fmt.Sprintf("Stage: %s\n", d.Stage))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", d.Rows))
	if d.Message != "" {
		b.WriteString(fmt.Sprintf("Message: %s\n", d.Message))
	}
	if d.Columns == nil {
		return b.String()
	}

	b.WriteString("\n[FILTER BY PRODUCT]\n")
	b.WriteString(fmt.Sprintf("Options: %s\n", strings.Join(d.Options, ", ")))
	b.WriteString(fmt.Sprintf("Selected: %s (%d rows)\n", d.Selected, d.Matched))

	b.WriteString("\n[DATASET PREVIEW]\n")
	b.WriteString(d.PreviewTable())

	if len(d.Means) > 0 {
		b.WriteString("\n[SENTIMENT SCORE BY PRODUCT]\n")
		maxAbs := 0.0
		nameW := 0
		for _, g := range d.Means {
			maxAbs = math.Max(maxAbs, math.Abs(g.Mean))
			if len(g.Product) > nameW {
				nameW = len(g.Product)
			}
		}
		for _, g := range d.Means {
			n := 0
			if maxAbs > 0 {
				n = int(math.Round(math.Abs(g.Mean) / maxAbs * float64(opt.BarWidth)))
			}
			bar := strings.Repeat("█", n)
			if g.Mean < 0 {
				bar = strings.Repeat("░", n)
			}
			b.WriteString(fmt.Sprintf("%-*s %s %.4f (n=%d)\n", nameW, safeVal(g.Product), bar, g.Mean, g.Count))
		}
	}

	if d.Points != nil {
		b.WriteString("\n[SENTIMENT VS REVIEW LENGTH]\n")
		if len(d.Points) == 0 {
			b.WriteString("(no scored rows)\n")
		} else {
			for _, line := range plotText(d.Points, opt.PlotWidth, opt.PlotHeight, func(Point) rune { return '*' }) {
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("\n[SENTIMENT VS REVIEW LENGTH BY PRODUCT]\n")
			legend := productMarkers(d.Points)
			for _, line := range plotText(d.Points, opt.PlotWidth, opt.PlotHeight, func(p Point) rune { return legend[p.Product] }) {
				b.WriteString(line)
				b.WriteString("\n")
			}
			names := make([]string, 0, len(legend))
			for k := range legend {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				b.WriteString(fmt.Sprintf("- %c = %s\n", legend[k], safeVal(k)))
			}
		}
	}

	if len(d.Notices) > 0 || len(d.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range d.Notices {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
		for _, w := range d.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PreviewTable renders the preview rows as a Markdown table.
func (d *Dashboard) PreviewTable() string { return d.PreviewTableWith(safeVal) }

// PreviewTableWith is PreviewTable with cell text passed through cell after
// truncation. Header names go through it as well.
func (d *Dashboard) PreviewTableWith(cell func(string) string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, c := range d.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(cell(safeName(c)))
	}
	b.WriteString(" |\n| ")
	for i := range d.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range d.Preview {
		b.WriteString("| ")
		for i := range d.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if r := []rune(val); len(r) > 80 {
				val = string(r[:77]) + "..."
			}
			b.WriteString(cell(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// plotText draws points on a character grid with length on the x axis and
// score on the y axis. Cells hit by different markers show '#'.
func plotText(pts []Point, width, height int, marker func(Point) rune) []string {
	minX, maxX := 0.0, 0.0
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		maxX = math.Max(maxX, float64(p.Length))
		minY = math.Min(minY, p.Score)
		maxY = math.Max(maxY, p.Score)
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		minY, maxY = minY-0.5, maxY+0.5
	}
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for _, p := range pts {
		x := int(math.Round((float64(p.Length) - minX) / (maxX - minX) * float64(width-1)))
		y := int(math.Round((p.Score - minY) / (maxY - minY) * float64(height-1)))
		row := height - 1 - y
		m := marker(p)
		if cur := grid[row][x]; cur != ' ' && cur != m {
			m = '#'
		}
		grid[row][x] = m
	}
	lines := make([]string, 0, height+2)
	for i, row := range grid {
		label := "        "
		switch i {
		case 0:
			label = fmt.Sprintf("%8.3f", maxY)
		case height - 1:
			label = fmt.Sprintf("%8.3f", minY)
		}
		lines = append(lines, label+" |"+strings.TrimRight(string(row), " "))
	}
	lines = append(lines, "         +"+strings.Repeat("-", width))
	lines = append(lines, fmt.Sprintf("          %-*d%d  (review length, characters)", width-len(fmt.Sprint(int(maxX))), int(minX), int(maxX)))
	return lines
}

// productMarkers assigns one marker rune per product: the first unused
// upper-case letter of its name, else a digit or symbol from a fallback set.
func productMarkers(pts []Point) map[string]rune {
	out := map[string]rune{}
	used := map[rune]bool{'#': true, '*': true}
	fallback := []rune("0123456789@%&+=~^")
	for _, p := range pts {
		if _, ok := out[p.Product]; ok {
			continue
		}
		var pick rune
		for _, r := range strings.ToUpper(p.Product) {
			if r > ' ' && r < 127 && !used[r] {
				pick = r
				break
			}
		}
		if pick == 0 {
			for _, r := range fallback {
				if !used[r] {
					pick = r
					break
				}
			}
		}
		if pick == 0 {
			pick = '?'
		}
		used[pick] = true
		out[p.Product] = pick
	}
	return out
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
