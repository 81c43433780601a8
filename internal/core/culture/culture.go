package culture

import (
	"github.com/agenthands/wardwatch/internal/core/model"
)

const table = "microbiology"

// FilterPositive keeps rows whose Result equals marker exactly. The match is
// case-sensitive and no trimming is applied.
func FilterPositive(rows []model.MicroRow, marker string) []model.PositiveCulture {
	var out []model.PositiveCulture
	for _, r := range rows {
		if r.Result != marker {
			continue
		}
		out = append(out, model.PositiveCulture{
			PatientID:      r.PatientID,
			Organism:       r.Organism,
			CollectionDate: r.CollectionDate,
		})
	}
	return out
}

// Index filters positives like FilterPositive and then checks that every
// surviving culture has the fields the exposure join needs. Non-positive rows
// are discarded before validation.
func Index(rows []model.MicroRow, marker string) ([]model.PositiveCulture, error) {
	for i, r := range rows {
		if r.Result != marker {
			continue
		}
		switch {
		case r.PatientID == "":
			return nil, &model.MalformedInputError{Table: table, Row: i, Field: "patient_id", Reason: "missing"}
		case r.Organism == "":
			return nil, &model.MalformedInputError{Table: table, Row: i, Field: "organism", Reason: "missing"}
		case r.CollectionDate.IsZero():
			return nil, &model.MalformedInputError{Table: table, Row: i, Field: "collection_date", Reason: "missing"}
		}
	}
	return FilterPositive(rows, marker), nil
}
