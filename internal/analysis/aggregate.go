package analysis

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/KaramelBytes/reviewlens/internal/dataset"
)

// GroupMean is the mean sentiment score of one product.
type GroupMean struct {
	Product string  `json:"product"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
}

// Point is one scatter-plot sample: review length against sentiment score.
type Point struct {
	Length  int     `json:"length"`
	Score   float64 `json:"score"`
	Product string  `json:"product"`
	Text    string  `json:"text"`
}

// MeanByProduct groups every row of the table by product and averages the
// sentiment scores, skipping missing ones. Products with no usable score map
// to NaN.
func MeanByProduct(t *dataset.Table) map[string]float64 {
	out := make(map[string]float64)
	for _, g := range GroupMeans(t) {
		out[g.Product] = g.Mean
	}
	return out
}

// GroupMeans is MeanByProduct as a slice sorted by product name.
func GroupMeans(t *dataset.Table) []GroupMean {
	if t == nil {
		return nil
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := map[string]*acc{}
	for _, r := range t.Rows {
		a := groups[r.Product]
		if a == nil {
			a = &acc{}
			groups[r.Product] = a
		}
		if r.HasScore() {
			a.sum += r.Score
			a.n++
		}
	}
	out := make([]GroupMean, 0, len(groups))
	for k, a := range groups {
		m := math.NaN()
		if a.n > 0 {
			m = a.sum / float64(a.n)
		}
		out = append(out, GroupMean{Product: k, Count: a.n, Mean: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}

// ReviewLength is the character count of the row's text, read from
// CLEANED_SUMMARY once the table is cleaned and from SUMMARY otherwise.
// Absent text has length 0.
func ReviewLength(t *dataset.Table, r *dataset.Review) int {
	if s := reviewText(t, r); s != nil {
		return utf8.RuneCountInString(*s)
	}
	return 0
}

func reviewText(t *dataset.Table, r *dataset.Review) *string {
	if t != nil && t.Cleaned() && r.Cleaned != nil {
		return r.Cleaned
	}
	return r.Summary
}

// Points computes length-vs-score samples for the view. It returns a
// *dataset.SchemaGapError when the table has no text column or no score
// column. Rows without a score are skipped.
func Points(t *dataset.Table, v View) ([]Point, error) {
	var missing []string
	if _, ok := t.TextColumn(); !ok {
		missing = append(missing, dataset.ColSummary)
	}
	if !t.HasColumn(dataset.ColScore) {
		missing = append(missing, dataset.ColScore)
	}
	if len(missing) > 0 {
		return nil, &dataset.SchemaGapError{Missing: missing, Msg: "Columns needed for scatterplot not found."}
	}
	pts := make([]Point, 0, len(v))
	for _, r := range v {
		if !r.HasScore() {
			continue
		}
		p := Point{Length: ReviewLength(t, r), Score: r.Score, Product: r.Product}
		if s := reviewText(t, r); s != nil {
			p.Text = *s
		}
		pts = append(pts, p)
	}
	return pts, nil
}
