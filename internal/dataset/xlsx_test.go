package dataset

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeWorkbook(t *testing.T, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "reviews.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return p
}

func reviewWorkbook(t *testing.T) string {
	return writeWorkbook(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="7" r:id="rId1"/><sheet name="Reviews" sheetId="3" r:id="rId2"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Target="worksheets/sheet1.xml"/><Relationship Id="rId2" Target="/xl/worksheets/sheet2.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>PRODUCT</t></si><si><t>SUMMARY</t></si><si><t>SENTIMENT_SCORE</t></si><si><t>Earbuds</t></si><si><r><t>Great </t></r><r><t>sound!</t></r></si></sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>just notes</t></is></c></row></sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
<row r="2"><c r="A2" t="s"><v>3</v></c><c r="B2" t="s"><v>4</v></c><c r="C2"><v>0.8</v></c></row>
<row r="3"></row>
<row r="4"><c r="A4" t="inlineStr"><is><t>Charger</t></is></c><c r="C4"><v>-0.5</v></c></row>
</sheetData></worksheet>`,
	})
}

func TestLoadXLSXBySheetName(t *testing.T) {
	path := reviewWorkbook(t)
	tbl, err := Load(path, Options{Sheet: "reviews"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2 (blank row skipped)", tbl.Len())
	}
	if r := tbl.Rows[0]; r.Product != "Earbuds" || r.Summary == nil || *r.Summary != "Great sound!" || r.Score != 0.8 {
		t.Fatalf("row 0 = %+v", r)
	}
	if r := tbl.Rows[1]; r.Product != "Charger" || r.Summary != nil || r.Score != -0.5 {
		t.Fatalf("row 1 = %+v", r)
	}

	// Numbers select by position in the sheet list, not by sheetId.
	byNumber, err := Load(path, Options{Sheet: "2"})
	if err != nil || byNumber.Len() != 2 {
		t.Fatalf("Load by number: %v", err)
	}
	var le *LoadError
	if _, err := Load(path, Options{Sheet: "3"}); !errors.As(err, &le) {
		t.Fatalf("sheet 3 of 2: expected *LoadError, got %v", err)
	}
}

func TestLoadXLSXErrors(t *testing.T) {
	path := reviewWorkbook(t)
	var le *LoadError

	// The first sheet has no PRODUCT column.
	if _, err := Load(path, Options{}); !errors.As(err, &le) || le.Path != path {
		t.Fatalf("first sheet: expected *LoadError with path, got %v", err)
	}
	if _, err := Load(path, Options{Sheet: "Missing"}); !errors.As(err, &le) {
		t.Fatalf("unknown sheet: expected *LoadError, got %v", err)
	}

	bogus := filepath.Join(t.TempDir(), "bogus.xlsx")
	if err := os.WriteFile(bogus, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bogus, Options{}); !errors.As(err, &le) {
		t.Fatalf("bad zip: expected *LoadError, got %v", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.in); got != tt.want {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA7": 26, "XFD1": 16383, "": -1} {
		got, err := colIndexFromRef(ref)
		if err != nil || got != want {
			t.Errorf("colIndexFromRef(%q) = %d, %v; want %d", ref, got, err, want)
		}
	}
	for _, ref := range []string{"XFE1", "ZZZZZZ1", "ZZZZZZZZZZZZZZ1"} {
		if _, err := colIndexFromRef(ref); err == nil {
			t.Errorf("colIndexFromRef(%q) should fail", ref)
		}
	}
}

func TestLoadXLSXRejectsOutOfRangeColumn(t *testing.T) {
	path := writeWorkbook(t, map[string]string{
		"xl/workbook.xml":            `<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><sheets><sheet name="S" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships><Relationship Id="rId1" Target="worksheets/sheet1.xml"/></Relationships>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>PRODUCT</t></is></c></row>
<row r="2"><c r="ZZZZZZ2" t="inlineStr"><is><t>boom</t></is></c></row>
</sheetData></worksheet>`,
	})
	_, err := Load(path, Options{})
	var le *LoadError
	if !errors.As(err, &le) || le.Path != path {
		t.Fatalf("expected *LoadError with path, got %T %v", err, err)
	}
}
