package model

import "time"

// TransferRow is one raw ward transfer as handed over by the loader.
type TransferRow struct {
	PatientID string    `json:"patient_id"`
	Location  string    `json:"location"`
	WardIn    time.Time `json:"ward_in_time"`
	WardOut   time.Time `json:"ward_out_time"`
}

// WardStay is one contiguous ward assignment. Start <= End always holds.
type WardStay struct {
	PatientID string    `json:"patient_id"`
	Location  string    `json:"location"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}
