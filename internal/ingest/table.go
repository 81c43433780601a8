package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/agenthands/wardwatch/internal/core/model"
)

// table is a header plus string cells, whatever the file format.
type table struct {
	name   string
	header map[string]int
	rows   [][]string
	// serials is set for workbooks, whose date cells read back as day
	// serial numbers.
	serials  bool
	date1904 bool
}

func readCSV(name string, r io.Reader) (*table, error) {
	br := stripUTF8BOM(bufio.NewReader(r))
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}
	return newTable(name, records)
}

// readXLSX reads the first sheet of a workbook. Cells are read without number
// formatting so date cells keep their full serial value.
func readXLSX(name string, r io.Reader) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s workbook: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &model.MalformedInputError{Table: name, Row: -1, Field: "sheet", Reason: "workbook has no sheets"}
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet %q: %w", name, sheets[0], err)
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s workbook properties: %w", name, err)
	}

	t, err := newTable(name, records)
	if err != nil {
		return nil, err
	}
	t.serials = true
	t.date1904 = props.Date1904 != nil && *props.Date1904
	return t, nil
}

func newTable(name string, records [][]string) (*table, error) {
	if len(records) == 0 {
		return nil, &model.MalformedInputError{Table: name, Row: -1, Field: "header", Reason: "missing"}
	}
	header := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if !utf8.ValidString(h) {
			return nil, &model.MalformedInputError{Table: name, Row: -1, Field: "header", Reason: "invalid encoding"}
		}
		header[h] = i
	}

	var rows [][]string
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return &table{name: name, header: header, rows: rows}, nil
}

// column resolves the first present alias to its index.
func (t *table) column(aliases ...string) (int, error) {
	for _, a := range aliases {
		if i, ok := t.header[a]; ok {
			return i, nil
		}
	}
	return 0, &model.MalformedInputError{
		Table:  t.name,
		Row:    -1,
		Field:  aliases[0],
		Reason: "missing required header column",
	}
}

func (t *table) columns(want [][]string) ([]int, error) {
	idx := make([]int, len(want))
	for i, aliases := range want {
		c, err := t.column(aliases...)
		if err != nil {
			return nil, err
		}
		idx[i] = c
	}
	return idx, nil
}

// parseTime reads a timestamp cell. Workbook cells may hold a day serial;
// anything else goes through ParseTime.
func (t *table) parseTime(row int, field, v string) (time.Time, error) {
	if t.serials {
		if serial, err := strconv.ParseFloat(v, 64); err == nil {
			ts, err := excelize.ExcelDateToTime(serial, t.date1904)
			if err != nil {
				return time.Time{}, &model.MalformedInputError{Table: t.name, Row: row, Field: field, Reason: err.Error()}
			}
			return ts.UTC(), nil
		}
	}
	ts, err := ParseTime(v)
	if err != nil {
		return time.Time{}, &model.MalformedInputError{Table: t.name, Row: row, Field: field, Reason: err.Error()}
	}
	return ts, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// IsMalformed reports whether err carries a *model.MalformedInputError.
func IsMalformed(err error) bool {
	var m *model.MalformedInputError
	return errors.As(err, &m)
}
