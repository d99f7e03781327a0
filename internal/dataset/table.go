package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Well-known column names. Lookups are case-insensitive.
const (
	ColProduct = "PRODUCT"
	ColSummary = "SUMMARY"
	ColScore   = "SENTIMENT_SCORE"
	ColCleaned = "CLEANED_SUMMARY"
)

// Options controls how a dataset file is read.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Sheet selects the worksheet of a .xlsx workbook by name or 1-based
	// number. Empty means the first sheet.
	Sheet string
}

// Review is one row of the dataset.
type Review struct {
	Product string
	// Summary is nil when the cell was empty.
	Summary *string
	// Score is NaN when the cell was empty or not numeric.
	Score float64
	// Cleaned is set only after Table.Clean runs.
	Cleaned *string
	// Cells holds the raw values aligned with Table.Columns.
	Cells []string
}

// HasScore reports whether the row carries a usable sentiment score.
func (r *Review) HasScore() bool { return !math.IsNaN(r.Score) && !math.IsInf(r.Score, 0) }

// Table is an ordered collection of reviews sharing the column set fixed at load time.
type Table struct {
	Name     string
	Columns  []string
	Rows     []*Review
	Warnings []string

	index   map[string]int
	cleaned bool
}

// rowReader is the record source shared by the CSV and XLSX readers.
type rowReader interface {
	Read() ([]string, error)
}

// Load reads the dataset at path: a .xlsx workbook, or delimited text
// otherwise. Every failure is returned as a *LoadError.
func Load(path string, opt Options) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		rr, err := openXLSX(data, opt.Sheet)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		t, err := build(rr, filepath.Base(path), opt)
		if err != nil {
			return nil, withPath(err, path)
		}
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := Read(f, filepath.Base(path), opt)
	if err != nil {
		return nil, withPath(err, path)
	}
	return t, nil
}

func withPath(err error, path string) error {
	var le *LoadError
	if errors.As(err, &le) {
		le.Path = path
	}
	return err
}

// Read parses delimited text with a header row into a Table.
func Read(src io.Reader, name string, opt Options) (*Table, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	return build(r, name, opt)
}

func build(r rowReader, name string, opt Options) (*Table, error) {
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Err: errors.New("no columns to parse from file")}
		}
		return nil, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}
	t := &Table{Name: name, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Columns = append(t.Columns, h)
		key := strings.ToUpper(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	if !t.HasColumn(ColProduct) {
		return nil, &LoadError{Err: fmt.Errorf("missing required column %s", ColProduct)}
	}
	ncol := len(t.Columns)
	pIdx := t.index[ColProduct]
	sIdx, hasSummary := t.index[ColSummary]
	scIdx, hasScore := t.index[ColScore]

	badScores := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Err: fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)}
		}
		for len(rec) > ncol && rec[len(rec)-1] == "" {
			rec = rec[:len(rec)-1]
		}
		if len(rec) > ncol {
			return nil, &LoadError{Err: fmt.Errorf("row %d: expected %d fields, saw %d", len(t.Rows)+1, ncol, len(rec))}
		}
		cells := make([]string, ncol)
		copy(cells, rec)

		row := &Review{Product: strings.TrimSpace(cells[pIdx]), Score: math.NaN(), Cells: cells}
		if hasSummary && cells[sIdx] != "" {
			s := cells[sIdx]
			row.Summary = &s
		}
		if hasScore {
			if v := strings.TrimSpace(cells[scIdx]); v != "" {
				if x, ok := parseNumeric(v, opt); ok {
					row.Score = x
				} else {
					badScores++
				}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if badScores > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("%d %s values were not numeric and are treated as missing", badScores, ColScore))
	}
	return t, nil
}

// HasColumn reports whether the table has the named column (case-insensitive).
// CLEANED_SUMMARY is only reported once Clean has run.
func (t *Table) HasColumn(name string) bool {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == ColCleaned {
		return t.cleaned
	}
	_, ok := t.index[key]
	return ok
}

// Cleaned reports whether Clean has populated CLEANED_SUMMARY.
func (t *Table) Cleaned() bool { return t.cleaned }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clean derives CLEANED_SUMMARY from SUMMARY for every row, in place.
// Running it again recomputes the column.
func (t *Table) Clean() error {
	if !t.HasColumn(ColSummary) {
		return &SchemaGapError{Missing: []string{ColSummary}, Msg: "Column SUMMARY not found; nothing to parse."}
	}
	idx, exists := t.index[ColCleaned]
	if !exists {
		idx = len(t.Columns)
		t.Columns = append(t.Columns, ColCleaned)
		t.index[ColCleaned] = idx
	}
	for _, row := range t.Rows {
		c := CleanText(row.Summary)
		row.Cleaned = &c
		if idx < len(row.Cells) {
			row.Cells[idx] = c
		} else {
			row.Cells = append(row.Cells, c)
		}
	}
	t.cleaned = true
	return nil
}

// TextColumn returns the column the length metric reads from: CLEANED_SUMMARY
// when available, else SUMMARY. ok is false when neither exists.
func (t *Table) TextColumn() (name string, ok bool) {
	if t.cleaned {
		return ColCleaned, true
	}
	if t.HasColumn(ColSummary) {
		return ColSummary, true
	}
	return "", false
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
