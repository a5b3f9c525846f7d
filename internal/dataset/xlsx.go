package dataset

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// LoadXLSX reads the selected worksheet of an .xlsx workbook. The first
// non-empty row is the header. Only the parts needed for cell values are
// read: workbook, relationships, shared strings and one sheet.
func LoadXLSX(filePath string, opt Options) (*Table, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	wb, err := readWorkbook(&zr.Reader)
	if err != nil {
		return nil, err
	}
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	sheet, err := openZipEntry(&zr.Reader, target)
	if err != nil {
		return nil, err
	}
	defer sheet.Close()

	rr := &sheetRowReader{dec: xml.NewDecoder(sheet), shared: wb.shared}
	var dec *rowDecoder
	var recs []Record
	row := 0
	for {
		cells, ok := rr.next()
		if !ok {
			break
		}
		if blankRow(cells) {
			continue
		}
		if dec == nil {
			if dec, err = newRowDecoder(cells); err != nil {
				return nil, err
			}
			continue
		}
		row++
		if opt.MaxRows > 0 && len(recs) >= opt.MaxRows {
			break
		}
		rec, err := dec.decode(row, cells)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if rr.err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, rr.err)
	}
	if dec == nil {
		return nil, &DataFormatError{Column: RequiredColumns[0], Reason: "sheet has no header row"}
	}
	t := NewTable(filepath.Base(filePath), dec.columns, recs)
	t.Source = filePath
	return t, nil
}

type workbook struct {
	sheets []wbSheet
	rels   map[string]string
	shared []string
}

type wbSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

func readWorkbook(zr *zip.Reader) (*workbook, error) {
	var doc struct {
		Sheets []wbSheet `xml:"sheets>sheet"`
	}
	if err := decodeZipXML(zr, "xl/workbook.xml", &doc); err != nil {
		return nil, err
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := decodeZipXML(zr, "xl/_rels/workbook.xml.rels", &rels); err != nil && !isMissingEntry(err) {
		return nil, err
	}
	var sst struct {
		Items []struct {
			T    string `xml:"t"`
			Runs []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := decodeZipXML(zr, "xl/sharedStrings.xml", &sst); err != nil && !isMissingEntry(err) {
		return nil, err
	}

	wb := &workbook{sheets: doc.Sheets, rels: make(map[string]string, len(rels.Items))}
	for _, r := range rels.Items {
		wb.rels[r.ID] = r.Target
	}
	for _, si := range sst.Items {
		if len(si.Runs) == 0 {
			wb.shared = append(wb.shared, si.T)
			continue
		}
		var b strings.Builder
		for _, run := range si.Runs {
			b.WriteString(run.T)
		}
		wb.shared = append(wb.shared, b.String())
	}
	return wb, nil
}

// sheetPath resolves a sheet by name, else by 1-based sheetId, else by the
// conventional worksheets/sheetN.xml location.
func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		names := make([]string, 0, len(wb.sheets))
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// normalizeRelPath converts a relationship Target into a ZIP entry name.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

type missingEntryError struct{ name string }

func (e *missingEntryError) Error() string { return fmt.Sprintf("xlsx entry %s not found", e.name) }

func isMissingEntry(err error) bool {
	_, ok := err.(*missingEntryError)
	return ok
}

func openZipEntry(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			return rc, nil
		}
	}
	return nil, &missingEntryError{name: name}
}

func decodeZipXML(zr *zip.Reader, name string, v any) error {
	rc, err := openZipEntry(zr, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// sheetRowReader streams <row> elements as dense string slices.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	err    error
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

func (r *sheetRowReader) next() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if err != io.EOF {
				r.err = err
			}
			return nil, false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []xlsxCell `xml:"c"`
		}
		if err := r.dec.DecodeElement(&row, &se); err != nil {
			r.err = err
			return nil, false
		}
		var out []string
		for i, c := range row.Cells {
			col := i
			if ref := colIndexFromRef(c.Ref); ref >= 0 {
				col = ref
			}
			for len(out) <= col {
				out = append(out, "")
			}
			out[col] = r.cellValue(c)
		}
		return out, true
	}
}

func (r *sheetRowReader) cellValue(c xlsxCell) string {
	switch c.Type {
	case "s":
		idx := atoiSafe(c.Value)
		if idx >= 0 && idx < len(r.shared) {
			return r.shared[idx]
		}
		return ""
	case "inlineStr":
		return c.Inline
	}
	return c.Value
}

// colIndexFromRef maps "C12" to 2.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		ch := ref[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
			idx = idx*26 + int(ch-'A'+1)
		case ch >= 'a' && ch <= 'z':
			idx = idx*26 + int(ch-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
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
