package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

type wbSheet struct {
	Name string
	RID  string
}

// openXLSX locates the requested worksheet of a .xlsx workbook and returns a
// row reader over it. An empty sheet selects the first sheet; otherwise it is
// matched by name (case-insensitive), then by 1-based position in the
// workbook's sheet list.
func openXLSX(data []byte, sheet string) (*sheetRowReader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))
	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))

	var rid string
	sheet = strings.TrimSpace(sheet)
	switch {
	case sheet == "":
		if len(sheets) > 0 {
			rid = sheets[0].RID
		}
	default:
		for _, s := range sheets {
			if strings.EqualFold(s.Name, sheet) {
				rid = s.RID
				break
			}
		}
		if n := atoiSafe(sheet); rid == "" && fmt.Sprint(n) == sheet && n >= 1 && n <= len(sheets) {
			rid = sheets[n-1].RID
		}
		if rid == "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.Name
			}
			return nil, fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(names, ", "))
		}
	}
	target := "xl/worksheets/sheet1.xml"
	if rel, ok := rels[rid]; ok {
		target = normalizeRelPath(rel)
	}
	body := readZipFile(zr, target)
	if body == nil {
		return nil, fmt.Errorf("worksheet %s missing from workbook", target)
	}
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(body)), shared: shared}, nil
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	if len(data) == 0 {
		return sheets
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "id": // r:id
				s.RID = a.Value
			}
		}
		sheets = append(sheets, s)
	}
}

// parseRelationships maps relationship ids to their targets.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams worksheet rows. Read has the same contract as
// csv.Reader.Read: it returns io.EOF after the last row and skips blank rows.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
}

func (r *sheetRowReader) Read() ([]string, error) {
	for {
		row, err := r.next()
		if err != nil {
			return nil, err
		}
		for _, v := range row {
			if v != "" {
				return row, nil
			}
		}
	}
}

func (r *sheetRowReader) next() ([]string, error) {
	var cur []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read worksheet: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow, cur = true, nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col, err := colIndexFromRef(ref)
				if err != nil {
					return nil, err
				}
				if col < 0 {
					col = len(cur)
				}
				if col >= maxColumns {
					return nil, fmt.Errorf("worksheet row has more than %d columns", maxColumns)
				}
				for len(cur) <= col {
					cur = append(cur, "")
				}
				cur[col] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return cur, nil
			}
		}
	}
}

// cellValue reads up to the end of the current <c> element and returns its
// text, resolving shared-string references.
func (r *sheetRowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val += sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

// maxColumns is the worksheet width limit of Excel (column XFD).
const maxColumns = 16384

// colIndexFromRef turns a cell reference like "C12" into a 0-based column.
// A reference without letters yields -1. Columns past XFD are an error.
func colIndexFromRef(ref string) (int, error) {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1, nil
		}
		if idx > maxColumns {
			return 0, fmt.Errorf("cell reference %q is beyond column XFD", ref)
		}
	}
	return idx - 1, nil
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts a relationship target to its ZIP entry name.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
