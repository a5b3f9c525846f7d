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

// RequiredColumns must appear in the header of every input file.
var RequiredColumns = []string{
	"Age",
	"PremiumPrice",
	"NumberOfMajorSurgeries",
	"Diabetes",
	"BloodPressureProblems",
	"HistoryOfCancerInFamily",
	"AnyChronicDiseases",
}

// Options controls how a dataset file is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Load reads a CSV, TSV or XLSX file into a Table, choosing the reader by extension.
func Load(path string, opt Options) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited file from disk.
func LoadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSV(f, opt)
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	t.Source = path
	return t, nil
}

// ReadCSV decodes records from r. The first row must be the header.
func ReadCSV(r io.Reader, opt Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataFormatError{Column: RequiredColumns[0], Reason: "file has no header row"}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	dec, err := newRowDecoder(header)
	if err != nil {
		return nil, err
	}
	var recs []Record
	for row := 1; ; row++ {
		cells, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if opt.MaxRows > 0 && len(recs) >= opt.MaxRows {
			break
		}
		if blankRow(cells) {
			continue
		}
		rec, err := dec.decode(row, cells)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return NewTable("", dec.columns, recs), nil
}

// rowDecoder maps header positions to Record fields.
type rowDecoder struct {
	columns []string
	idx     map[string]int
}

func newRowDecoder(header []string) (*rowDecoder, error) {
	d := &rowDecoder{idx: make(map[string]int, len(header))}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		d.columns = append(d.columns, name)
		if _, dup := d.idx[strings.ToLower(name)]; !dup {
			d.idx[strings.ToLower(name)] = i
		}
	}
	for _, req := range RequiredColumns {
		if _, ok := d.idx[strings.ToLower(req)]; !ok {
			return nil, &DataFormatError{Column: req, Reason: "missing required column"}
		}
	}
	return d, nil
}

func (d *rowDecoder) cell(cells []string, name string) string {
	i := d.idx[strings.ToLower(name)]
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func (d *rowDecoder) decode(row int, cells []string) (Record, error) {
	var rec Record
	var err error
	if rec.Age, err = d.measure(row, cells, "Age"); err != nil {
		return rec, err
	}
	if rec.PremiumPrice, err = d.measure(row, cells, "PremiumPrice"); err != nil {
		return rec, err
	}
	flags := []struct {
		name string
		dst  *int
	}{
		{"Diabetes", &rec.Diabetes},
		{"BloodPressureProblems", &rec.BloodPressureProblems},
		{"HistoryOfCancerInFamily", &rec.HistoryOfCancerInFamily},
		{"AnyChronicDiseases", &rec.AnyChronicDiseases},
	}
	for _, f := range flags {
		if *f.dst, err = d.flag(row, cells, f.name); err != nil {
			return rec, err
		}
	}

	raw := d.cell(cells, "NumberOfMajorSurgeries")
	if raw == "" {
		rec.SurgeriesMissing = true
	} else {
		x, ok := parseNumber(raw)
		if !ok || x < 0 || x != math.Trunc(x) {
			return rec, &DataFormatError{Column: "NumberOfMajorSurgeries", Row: row, Value: raw, Reason: "expected a non-negative integer"}
		}
		rec.NumberOfMajorSurgeries = int(x)
	}
	rec.Cluster = -1
	return rec, nil
}

// measure parses a non-negative number; an empty cell yields NaN.
func (d *rowDecoder) measure(row int, cells []string, name string) (float64, error) {
	raw := d.cell(cells, name)
	if raw == "" {
		return math.NaN(), nil
	}
	x, ok := parseNumber(raw)
	if !ok {
		return 0, &DataFormatError{Column: name, Row: row, Value: raw, Reason: "expected a number"}
	}
	if x < 0 {
		return 0, &DataFormatError{Column: name, Row: row, Value: raw, Reason: "expected a non-negative number"}
	}
	return x, nil
}

func (d *rowDecoder) flag(row int, cells []string, name string) (int, error) {
	raw := d.cell(cells, name)
	x, ok := parseNumber(raw)
	if !ok || (x != 0 && x != 1) {
		return 0, &DataFormatError{Column: name, Row: row, Value: raw, Reason: "expected 0 or 1"}
	}
	return int(x), nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// parseNumber accepts plain and grouped numbers ("25000", "25,000",
// "25.000,50", "1e4"). A lone comma followed by exactly three digits is read as
// a thousands separator; otherwise it is a decimal comma.
func parseNumber(s string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00a0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case cpos >= 0:
		if len(raw)-cpos-1 == 3 {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.ReplaceAll(raw, ",", ".")
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
