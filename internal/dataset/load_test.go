package dataset

import (
	"archive/zip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var premiumRows = []string{
	"Age,Diabetes,BloodPressureProblems,AnyTransplants,AnyChronicDiseases,Height,Weight,KnownAllergies,HistoryOfCancerInFamily,NumberOfMajorSurgeries,PremiumPrice",
	"45,0,0,0,0,155,57,0,0,0,25000",
	"60,1,0,0,0,180,73,0,0,0,29000",
	"36,1,1,0,0,158,59,0,0,1,23000",
	"52,1,1,0,1,183,93,0,0,2,28000",
	"38,0,0,0,1,166,88,0,0,,23000",
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCSV(t *testing.T) {
	p := writeFile(t, "Medicalpremium.csv", strings.Join(premiumRows, "\n"))
	tbl, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Name != "Medicalpremium.csv" || tbl.Source != p {
		t.Fatalf("name/source = %q/%q", tbl.Name, tbl.Source)
	}
	if tbl.Len() != 5 {
		t.Fatalf("rows = %d, want 5", tbl.Len())
	}
	r := tbl.At(3)
	if r.Age != 52 || r.PremiumPrice != 28000 || r.Diabetes != 1 || r.AnyChronicDiseases != 1 || r.NumberOfMajorSurgeries != 2 {
		t.Fatalf("row 3 = %+v", r)
	}
	if r.Cluster != -1 || r.RiskLevel != "" || r.AgeGroup != "" {
		t.Fatalf("derived fields set at load: %+v", r)
	}
	last := tbl.At(4)
	if !last.SurgeriesMissing || last.NumberOfMajorSurgeries != 0 {
		t.Fatalf("missing surgeries = %+v", last)
	}
	if !tbl.HasColumn("knownallergies") {
		t.Fatalf("extra columns should be kept in Columns: %v", tbl.Columns)
	}
}

func TestLoadTSVAndBOM(t *testing.T) {
	body := "\ufeff" + strings.ReplaceAll(strings.Join(premiumRows[:3], "\n"), ",", "\t")
	p := writeFile(t, "premium.tsv", body)
	tbl, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 || tbl.At(1).PremiumPrice != 29000 {
		t.Fatalf("tsv rows = %+v", tbl.Records())
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	body := "Age,PremiumPrice,Diabetes\n30,10000,0\n"
	_, err := ReadCSV(strings.NewReader(body), Options{})
	var dfe *DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("err = %v, want DataFormatError", err)
	}
	if dfe.Column != "NumberOfMajorSurgeries" || dfe.Row != 0 {
		t.Fatalf("err = %+v", dfe)
	}
}

func TestReadCSVBadCells(t *testing.T) {
	header := premiumRows[0]
	cases := []struct {
		name   string
		row    string
		column string
	}{
		{"non-numeric age", "abc,0,0,0,0,155,57,0,0,0,25000", "Age"},
		{"negative premium", "45,0,0,0,0,155,57,0,0,0,-5", "PremiumPrice"},
		{"flag out of range", "45,2,0,0,0,155,57,0,0,0,25000", "Diabetes"},
		{"empty flag", "45,0,,0,0,155,57,0,0,0,25000", "BloodPressureProblems"},
		{"fractional surgeries", "45,0,0,0,0,155,57,0,0,1.5,25000", "NumberOfMajorSurgeries"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(header+"\n"+tc.row+"\n"), Options{})
			var dfe *DataFormatError
			if !errors.As(err, &dfe) {
				t.Fatalf("err = %v, want DataFormatError", err)
			}
			if dfe.Column != tc.column || dfe.Row != 1 {
				t.Fatalf("err = %+v, want column %s row 1", dfe, tc.column)
			}
		})
	}
}

func TestReadCSVMissingMeasuresAreNaN(t *testing.T) {
	body := premiumRows[0] + "\n,0,0,0,0,155,57,0,0,0,\n"
	tbl, err := ReadCSV(strings.NewReader(body), Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	r := tbl.At(0)
	if !math.IsNaN(r.Age) || r.HasPremium() {
		t.Fatalf("expected NaN age and premium, got %+v", r)
	}
}

func TestReadCSVMaxRowsAndBlankLines(t *testing.T) {
	body := strings.Join(premiumRows, "\n\n")
	tbl, err := ReadCSV(strings.NewReader(body), Options{MaxRows: 3})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.Len())
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"25000":     25000,
		"25,000":    25000,
		"25.000,50": 25000.5,
		"25,000.50": 25000.5,
		"1,5":       1.5,
		"1e4":       10000,
		" 42 ":      42,
	}
	for in, want := range cases {
		got, ok := parseNumber(in)
		if !ok || got != want {
			t.Errorf("parseNumber(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "abc", "NaN", "Inf"} {
		if _, ok := parseNumber(bad); ok {
			t.Errorf("parseNumber(%q) should fail", bad)
		}
	}
}

func TestTableMapDoesNotMutate(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(strings.Join(premiumRows, "\n")), Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	out := tbl.Map([]string{"AgeGroup"}, func(_ int, r *Record) { r.AgeGroup = "x" })
	if tbl.At(0).AgeGroup != "" {
		t.Fatalf("base table mutated")
	}
	if out.At(0).AgeGroup != "x" || !out.HasColumn("AgeGroup") {
		t.Fatalf("mapped table = %+v %v", out.At(0), out.Columns)
	}
	recs := out.Records()
	recs[0].Age = -1
	if out.At(0).Age == -1 {
		t.Fatalf("Records must return a copy")
	}
}

func TestLoadXLSX(t *testing.T) {
	p := writeXLSX(t, map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Data" sheetId="2" r:id="rId2"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><si><t>Age</t></si><si><t>PremiumPrice</t></si><si><r><t>Number</t></r><r><t>OfMajorSurgeries</t></r></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>readme</t></is></c></row></sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c>
<c r="D1" t="inlineStr"><is><t>Diabetes</t></is></c><c r="E1" t="inlineStr"><is><t>BloodPressureProblems</t></is></c>
<c r="F1" t="inlineStr"><is><t>HistoryOfCancerInFamily</t></is></c><c r="G1" t="inlineStr"><is><t>AnyChronicDiseases</t></is></c></row>
<row r="2"><c r="A2"><v>45</v></c><c r="B2"><v>25000</v></c><c r="C2"><v>1</v></c><c r="D2"><v>0</v></c><c r="E2"><v>1</v></c><c r="F2"><v>0</v></c><c r="G2"><v>0</v></c></row>
<row r="3"><c r="A3"><v>19</v></c><c r="B3"><v>15000</v></c><c r="D3"><v>0</v></c><c r="E3"><v>0</v></c><c r="F3"><v>0</v></c><c r="G3"><v>1</v></c></row>
</sheetData></worksheet>`,
	})

	opt := DefaultOptions()
	opt.SheetName = "data"
	tbl, err := LoadXLSX(p, opt)
	if err != nil {
		t.Fatalf("LoadXLSX by name: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}
	if r := tbl.At(0); r.Age != 45 || r.PremiumPrice != 25000 || r.NumberOfMajorSurgeries != 1 || r.BloodPressureProblems != 1 {
		t.Fatalf("row 0 = %+v", r)
	}
	if r := tbl.At(1); !r.SurgeriesMissing || r.AnyChronicDiseases != 1 {
		t.Fatalf("row 1 = %+v", r)
	}

	byIndex, err := Load(p, Options{SheetIndex: 2})
	if err != nil {
		t.Fatalf("Load by index: %v", err)
	}
	if byIndex.Len() != 2 {
		t.Fatalf("rows by index = %d", byIndex.Len())
	}

	if _, err := LoadXLSX(p, Options{SheetName: "Missing"}); err == nil || !strings.Contains(err.Error(), "Notes, Data") {
		t.Fatalf("expected sheet-not-found listing sheets, got %v", err)
	}
	var dfe *DataFormatError
	if _, err := LoadXLSX(p, Options{SheetIndex: 1}); !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError for notes sheet, got %v", err)
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
	if colIndexFromRef("AA10") != 26 || colIndexFromRef("c3") != 2 || colIndexFromRef("") != -1 {
		t.Errorf("colIndexFromRef mismatch")
	}
}

func writeXLSX(t *testing.T, parts map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "premium.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return p
}
