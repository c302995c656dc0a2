package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/utils"
	"github.com/xuri/excelize/v2"
)

type xlsxStore struct{}

func (xlsxStore) CanHandle(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

// Read loads every worksheet. The first row of each sheet is the header.
// Cells are read unformatted so numbers keep their stored precision, and
// numeric cells carrying a date number format become time.Time.
func (xlsxStore) Read(path string) (*dataset.Set, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	dates := newDateCells(f)
	set := dataset.NewSet()
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		ds := sheetDataset(sheet, rows)
		if err := dates.convert(sheet, ds); err != nil {
			return nil, fmt.Errorf("read dates of %q: %w", sheet, err)
		}
		set.Put(sheet, ds)
	}
	return set, nil
}

// dateCells resolves which numeric cells hold Excel date serials.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// convert replaces date-formatted serials of ds in place. Data row i is
// sheet row i+2.
func (d *dateCells) convert(sheet string, ds *dataset.Dataset) error {
	for i, row := range ds.Rows {
		for j, v := range row {
			serial, ok := dataset.AsFloat(v)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			isDate, err := d.styled(sheet, cell)
			if err != nil {
				return err
			}
			if !isDate {
				continue
			}
			// serials outside the Excel calendar stay numeric
			if t, err := excelize.ExcelDateToTime(serial, d.date1904); err == nil {
				row[j] = t
			}
		}
	}
	return nil
}

func (d *dateCells) styled(sheet, cell string) (bool, error) {
	id, err := d.f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false, err
	}
	if v, ok := d.styles[id]; ok {
		return v, nil
	}
	style, err := d.f.GetStyle(id)
	if err != nil {
		return false, err
	}
	custom := ""
	if style.CustomNumFmt != nil {
		custom = *style.CustomNumFmt
	}
	v := isDateFormat(style.NumFmt, custom)
	d.styles[id] = v
	return v, nil
}

// isDateFormat reports whether a number format renders a calendar date:
// the built-in date formats (including the East Asian ones) or a custom
// code with a year or day token outside quoted and bracketed sections.
// Time-only formats are not dates.
func isDateFormat(id int, custom string) bool {
	switch {
	case id >= 14 && id <= 17, id == 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	if custom == "" {
		return false
	}
	var b strings.Builder
	quoted, bracket := false, false
	for i := 0; i < len(custom); i++ {
		c := custom[i]
		switch {
		case quoted:
			quoted = c != '"'
		case bracket:
			bracket = c != ']'
		case c == '"':
			quoted = true
		case c == '[':
			bracket = true
		case c == '\\', c == '_', c == '*':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "yd")
}

// sheetDataset turns raw sheet text into a dataset. Rows shorter than the
// widest row are padded with nil.
func sheetDataset(name string, rows [][]string) *dataset.Dataset {
	if len(rows) == 0 {
		return dataset.New(name)
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	ds := dataset.New(name, headerNames(rows[0], width)...)
	for _, r := range rows[1:] {
		row := make([]any, width)
		for j, cell := range r {
			row[j] = ParseCell(cell)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// Write creates a fresh workbook with one sheet per dataset and replaces
// the target file atomically.
func (xlsxStore) Write(path string, set *dataset.Set) error {
	if set.Len() == 0 {
		return errors.New("write xlsx: no datasets to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	first := true
	err := set.Each(func(name string, ds *dataset.Dataset) error {
		if first {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("name sheet %q: %w", name, err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		return writeSheet(f, name, ds)
	})
	if err != nil {
		return err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

func writeSheet(f *excelize.File, sheet string, ds *dataset.Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return nil
	}
	header := make([]any, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}
	for i, r := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = cellValue(v)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}
