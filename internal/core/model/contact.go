package model

import "time"

// ExposureRecord pairs a positive culture with one ward stay that overlaps
// the culture's risk window.
type ExposureRecord struct {
	PatientID      string    `json:"patient_id"`
	CollectionDate time.Time `json:"collection_date"`
	Organism       string    `json:"organism"`
	Location       string    `json:"location"`
	StayStart      time.Time `json:"stay_start"`
	StayEnd        time.Time `json:"stay_end"`
}

// ContactPair is an unordered patient pair, stored with PatientID1 < PatientID2.
type ContactPair struct {
	PatientID1 string `json:"patient_id_1"`
	PatientID2 string `json:"patient_id_2"`
	Organism   string `json:"organism"`
	Location   string `json:"location"`
}

// Less orders pairs by (PatientID1, PatientID2, Organism, Location).
func (p ContactPair) Less(o ContactPair) bool {
	if p.PatientID1 != o.PatientID1 {
		return p.PatientID1 < o.PatientID1
	}
	if p.PatientID2 != o.PatientID2 {
		return p.PatientID2 < o.PatientID2
	}
	if p.Organism != o.Organism {
		return p.Organism < o.Organism
	}
	return p.Location < o.Location
}
