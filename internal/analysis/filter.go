package analysis

import (
	"github.com/KaramelBytes/reviewlens/internal/dataset"
)

// AllProducts is the filter option that selects every row.
const AllProducts = "All Products"

// View is an ordered subset of a table's rows. It references the table's
// rows; building one never mutates the table.
type View []*dataset.Review

// ProductOptions returns the filter options: AllProducts followed by every
// distinct PRODUCT value in order of first appearance.
func ProductOptions(t *dataset.Table) []string {
	opts := []string{AllProducts}
	if t == nil {
		return opts
	}
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if _, ok := seen[r.Product]; ok {
			continue
		}
		seen[r.Product] = struct{}{}
		opts = append(opts, r.Product)
	}
	return opts
}

// Filter returns the rows whose product equals selected, or every row when
// selected is AllProducts. An empty selection matches rows with an empty
// PRODUCT cell.
func Filter(t *dataset.Table, selected string) View {
	if t == nil {
		return nil
	}
	if selected == AllProducts {
		v := make(View, len(t.Rows))
		copy(v, t.Rows)
		return v
	}
	var v View
	for _, r := range t.Rows {
		if r.Product == selected {
			v = append(v, r)
		}
	}
	return v
}

// Head returns at most n leading rows of the view.
func (v View) Head(n int) View {
	if n < 0 || n >= len(v) {
		return v
	}
	return v[:n]
}
