package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func salesSet(t *testing.T) *dataset.Set {
	t.Helper()
	sales := dataset.New("", "category", "amount", "ref")
	require.NoError(t, sales.Append("A", int64(100), "007"))
	require.NoError(t, sales.Append("B", 300.5, nil))
	require.NoError(t, sales.Append("C", int64(600), "x-1"))

	clients := dataset.New("", "client", "city")
	require.NoError(t, clients.Append("Dupont", "Lyon"))

	set := dataset.NewSet()
	set.Put("Sales", sales)
	set.Put("Clients", clients)
	return set
}

func TestXLSXRoundTripPreservesOrderAndValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	set := salesSet(t)

	require.NoError(t, Write(path, set))
	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sales", "Clients"}, got.Names())
	for _, name := range set.Names() {
		want, _ := set.Get(name)
		have, ok := got.Get(name)
		require.True(t, ok, name)
		assert.True(t, want.Equal(have), "dataset %s differs: %#v vs %#v", name, want.Rows, have.Rows)
	}

	// a second cycle must be stable as well
	path2 := filepath.Join(t.TempDir(), "book2.xlsx")
	require.NoError(t, Write(path2, got))
	again, err := Read(path2)
	require.NoError(t, err)
	s1, _ := got.Get("Sales")
	s2, _ := again.Get("Sales")
	assert.True(t, s1.Equal(s2))
}

func TestXLSXReadHeadersAndPadding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id", "", "id"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "x"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, "y", 3.5, "extra"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	set, err := Read(path)
	require.NoError(t, err)
	ds, ok := set.Get("Sheet1")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1", "Unnamed: 3"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, []any{int64(1), "x", nil, nil}, ds.Rows[0])
	assert.Equal(t, []any{int64(2), "y", 3.5, "extra"}, ds.Rows[1])
}

func TestXLSXRoundTripKeepsFloatPrecisionAndDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precise.xlsx")
	ds := dataset.New("", "k", "avg", "ratio", "day")
	require.NoError(t, ds.Append("a", 700.0/3, 0.1+0.2, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, ds.Append("b", 1e-7, 123456789.123456789, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)))
	set := dataset.NewSet()
	set.Put("S", ds)

	require.NoError(t, Write(path, set))
	got, err := Read(path)
	require.NoError(t, err)
	have, ok := got.Get("S")
	require.True(t, ok)
	assert.True(t, ds.Equal(have), "want %#v, got %#v", ds.Rows, have.Rows)
	assert.Equal(t, 233.33333333333334, have.Rows[0][1])
	assert.IsType(t, time.Time{}, have.Rows[1][3])
}

func TestXLSXReadDateFormattedCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"date", "amount", "iso"}))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 10))
	require.NoError(t, f.SetCellValue("Sheet1", "C2", 45306))

	isoFmt := "yyyy-mm-dd"
	iso, err := f.NewStyle(&excelize.Style{CustomNumFmt: &isoFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", iso))
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", money))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	set, err := Read(path)
	require.NoError(t, err)
	ds, _ := set.Get("Sheet1")
	require.Len(t, ds.Rows, 1)
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(ds.Rows[0][0].(time.Time)), "got %v", ds.Rows[0][0])
	assert.Equal(t, int64(10), ds.Rows[0][1])
	assert.True(t, want.Equal(ds.Rows[0][2].(time.Time)), "got %v", ds.Rows[0][2])
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		id     int
		custom string
		want   bool
	}{
		{0, "", false},
		{2, "", false},
		{14, "", true},
		{22, "", true},
		{20, "", false},
		{57, "", true},
		{164, "yyyy-mm-dd", true},
		{164, "dd/mm/yyyy hh:mm", true},
		{164, "hh:mm:ss", false},
		{164, `0.00" days"`, false},
		{164, "[Red]0.00", false},
		{164, `#,##0\ "d"`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isDateFormat(tt.id, tt.custom), "isDateFormat(%d, %q)", tt.id, tt.custom)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventes.csv")
	content := "produit,quantite,prix\nstylo,3,1.5\ncahier,,2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ventes"}, set.Names())
	ds, _ := set.Get("ventes")
	assert.Equal(t, []any{"stylo", int64(3), 1.5}, ds.Rows[0])
	assert.Equal(t, []any{"cahier", nil, int64(2)}, ds.Rows[1])

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(out, set))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
}

func TestCSVWriteRejectsMultipleDatasets(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "x.csv"), salesSet(t))
	assert.Error(t, err)
}

func TestForPathUnsupported(t *testing.T) {
	_, err := ForPath("notes.docx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))

	s, err := ForPath("BOOK.XLSX")
	require.NoError(t, err)
	assert.IsType(t, xlsxStore{}, s)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"0", int64(0)},
		{"3.25", 3.25},
		{"-0.5", -0.5},
		{"007", "007"},
		{"+33612345678", "+33612345678"},
		{"NaN", "NaN"},
		{"inf", "inf"},
		{"2024-01-15", "2024-01-15"},
		{"Lyon", "Lyon"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCell(tt.in), "ParseCell(%q)", tt.in)
	}
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"a", "a", " ", "a.1", "a"}, 6)
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.1.1", "a.2", "Unnamed: 5"}, got)
}
