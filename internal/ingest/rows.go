package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/agenthands/wardwatch/internal/core/model"
)

const (
	TransfersTable    = "transfers"
	MicrobiologyTable = "microbiology"
)

// Format is the on-disk encoding of an input table.
type Format int

const (
	CSV Format = iota
	XLSX
)

// FormatOf picks the format from a file name; anything that is not .xlsx is
// treated as CSV.
func FormatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return XLSX
	}
	return CSV
}

type transferRecord struct {
	PatientID string `field:"patient_id" validate:"required"`
	Location  string `field:"location" validate:"required"`
	WardIn    string `field:"ward_in_time" validate:"required"`
	WardOut   string `field:"ward_out_time" validate:"required"`
}

type microRecord struct {
	PatientID      string `field:"patient_id" validate:"required"`
	Result         string `field:"result"`
	Organism       string `field:"organism"`
	CollectionDate string `field:"collection_date"`
}

var (
	transferColumns = [][]string{{"patient_id"}, {"location"}, {"ward_in_time"}, {"ward_out_time"}}
	microColumns    = [][]string{{"patient_id"}, {"result"}, {"organism", "infection"}, {"collection_date"}}
)

// Reader parses transfer and microbiology tables into typed rows. The zero
// value is not usable; use NewReader.
type Reader struct {
	validate *validator.Validate
}

func NewReader() *Reader {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	return &Reader{validate: v}
}

func (rd *Reader) open(name string, format Format, r io.Reader) (*table, error) {
	if format == XLSX {
		return readXLSX(name, r)
	}
	return readCSV(name, r)
}

// Transfers reads rows of patient_id, location, ward_in_time, ward_out_time.
func (rd *Reader) Transfers(r io.Reader, format Format) ([]model.TransferRow, error) {
	t, err := rd.open(TransfersTable, format, r)
	if err != nil {
		return nil, err
	}
	idx, err := t.columns(transferColumns)
	if err != nil {
		return nil, err
	}

	out := make([]model.TransferRow, 0, len(t.rows))
	for i, rec := range t.rows {
		raw := transferRecord{
			PatientID: cell(rec, idx[0]),
			Location:  cell(rec, idx[1]),
			WardIn:    cell(rec, idx[2]),
			WardOut:   cell(rec, idx[3]),
		}
		if err := rd.check(TransfersTable, i, raw); err != nil {
			return nil, err
		}
		in, err := t.parseTime(i, "ward_in_time", raw.WardIn)
		if err != nil {
			return nil, err
		}
		outTime, err := t.parseTime(i, "ward_out_time", raw.WardOut)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TransferRow{
			PatientID: raw.PatientID,
			Location:  raw.Location,
			WardIn:    in,
			WardOut:   outTime,
		})
	}
	return out, nil
}

// Microbiology reads rows of patient_id, result, organism (or infection),
// collection_date. The result cell is passed through untrimmed.
func (rd *Reader) Microbiology(r io.Reader, format Format) ([]model.MicroRow, error) {
	t, err := rd.open(MicrobiologyTable, format, r)
	if err != nil {
		return nil, err
	}
	idx, err := t.columns(microColumns)
	if err != nil {
		return nil, err
	}

	out := make([]model.MicroRow, 0, len(t.rows))
	for i, rec := range t.rows {
		raw := microRecord{
			PatientID:      cell(rec, idx[0]),
			Result:         rawCell(rec, idx[1]),
			Organism:       cell(rec, idx[2]),
			CollectionDate: cell(rec, idx[3]),
		}
		if err := rd.check(MicrobiologyTable, i, raw); err != nil {
			return nil, err
		}
		var collected time.Time
		if raw.CollectionDate != "" {
			collected, err = t.parseTime(i, "collection_date", raw.CollectionDate)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, model.MicroRow{
			PatientID:      raw.PatientID,
			Result:         raw.Result,
			Organism:       raw.Organism,
			CollectionDate: collected,
		})
	}
	return out, nil
}

func (rd *Reader) check(tableName string, row int, rec interface{}) error {
	err := rd.validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &model.MalformedInputError{
			Table:  tableName,
			Row:    row,
			Field:  verrs[0].Field(),
			Reason: "missing",
		}
	}
	return fmt.Errorf("failed to validate %s row %d: %w", tableName, row, err)
}

func rawCell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 and the ISO-like local forms spreadsheets and
// dataframe exports produce. Values without a zone are read as UTC.
func ParseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("missing time value")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time: %s", v)
}
