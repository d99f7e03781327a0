package dataset

import (
	"fmt"
	"strconv"

	"github.com/jonreiter/govader"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// Rescore fills missing sentiment scores with the VADER compound polarity of
// the row's summary. Rows that already have a score, or have no summary, are
// left alone. It returns the number of rows filled.
func (t *Table) Rescore() (int, error) {
	if !t.HasColumn(ColSummary) {
		return 0, &SchemaGapError{Missing: []string{ColSummary}}
	}
	scIdx, hasScore := t.index[ColScore]
	if !hasScore {
		scIdx = len(t.Columns)
		t.Columns = append(t.Columns, ColScore)
		t.index[ColScore] = scIdx
	}
	filled := 0
	for _, row := range t.Rows {
		for len(row.Cells) <= scIdx {
			row.Cells = append(row.Cells, "")
		}
		if row.HasScore() || row.Summary == nil {
			continue
		}
		row.Score = analyzer.PolarityScores(*row.Summary).Compound
		row.Cells[scIdx] = strconv.FormatFloat(row.Score, 'f', 4, 64)
		filled++
	}
	if filled > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("%d missing %s values filled with VADER compound scores", filled, ColScore))
	}
	return filled, nil
}
