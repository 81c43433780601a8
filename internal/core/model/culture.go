package model

import "time"

// DefaultPositiveMarker is the result value that marks a culture as positive.
const DefaultPositiveMarker = "positive"

// MicroRow is one raw microbiology result. Result is kept exactly as loaded.
type MicroRow struct {
	PatientID      string    `json:"patient_id"`
	Result         string    `json:"result"`
	Organism       string    `json:"organism"`
	CollectionDate time.Time `json:"collection_date"`
}

type PositiveCulture struct {
	PatientID      string    `json:"patient_id"`
	Organism       string    `json:"organism"`
	CollectionDate time.Time `json:"collection_date"`
}
