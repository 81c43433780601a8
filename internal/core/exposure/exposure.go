package exposure

import (
	"time"

	"github.com/agenthands/wardwatch/internal/core/model"
	"github.com/agenthands/wardwatch/internal/core/visit"
)

// Window is the closed risk interval [date-W, date+W] around a collection date.
type Window struct {
	Start time.Time
	End   time.Time
}

func RiskWindow(collected time.Time, w time.Duration) Window {
	return Window{Start: collected.Add(-w), End: collected.Add(w)}
}

// Overlaps reports whether the stay touches the window. Both ends are closed.
func (win Window) Overlaps(s model.WardStay) bool {
	return !s.End.Before(win.Start) && !s.Start.After(win.End)
}

// Join pairs each positive culture with every stay of the same patient that
// overlaps the culture's risk window. Cultures with no such stay produce no
// record.
func Join(cultures []model.PositiveCulture, stays []model.WardStay, w time.Duration) []model.ExposureRecord {
	byPatient := visit.ByPatient(stays)

	var out []model.ExposureRecord
	for _, c := range cultures {
		win := RiskWindow(c.CollectionDate, w)
		for _, s := range byPatient[c.PatientID] {
			if !win.Overlaps(s) {
				continue
			}
			out = append(out, model.ExposureRecord{
				PatientID:      c.PatientID,
				CollectionDate: c.CollectionDate,
				Organism:       c.Organism,
				Location:       s.Location,
				StayStart:      s.Start,
				StayEnd:        s.End,
			})
		}
	}
	return out
}
