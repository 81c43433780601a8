package visit

import (
	"github.com/agenthands/wardwatch/internal/core/model"
)

const table = "transfers"

// BuildStays turns transfer rows into ward stays, one stay per row. Adjacent
// stays are not merged. The first invalid row rejects the whole batch.
func BuildStays(rows []model.TransferRow) ([]model.WardStay, error) {
	stays := make([]model.WardStay, 0, len(rows))
	for i, r := range rows {
		if err := validate(i, r); err != nil {
			return nil, err
		}
		stays = append(stays, model.WardStay{
			PatientID: r.PatientID,
			Location:  r.Location,
			Start:     r.WardIn,
			End:       r.WardOut,
		})
	}
	return stays, nil
}

// ByPatient groups stays by patient ID, preserving input order per patient.
func ByPatient(stays []model.WardStay) map[string][]model.WardStay {
	idx := make(map[string][]model.WardStay)
	for _, s := range stays {
		idx[s.PatientID] = append(idx[s.PatientID], s)
	}
	return idx
}

func validate(i int, r model.TransferRow) error {
	switch {
	case r.PatientID == "":
		return &model.MalformedInputError{Table: table, Row: i, Field: "patient_id", Reason: "missing"}
	case r.Location == "":
		return &model.MalformedInputError{Table: table, Row: i, Field: "location", Reason: "missing"}
	case r.WardIn.IsZero():
		return &model.MalformedInputError{Table: table, Row: i, Field: "ward_in_time", Reason: "missing"}
	case r.WardOut.IsZero():
		return &model.MalformedInputError{Table: table, Row: i, Field: "ward_out_time", Reason: "missing"}
	case r.WardOut.Before(r.WardIn):
		return &model.MalformedInputError{Table: table, Row: i, Field: "ward_out_time", Reason: "precedes ward_in_time"}
	}
	return nil
}
