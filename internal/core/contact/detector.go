package contact

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/wardwatch/internal/core/model"
)

// Detector finds patient pairs exposed to the same organism on the same ward
// at overlapping times. Records are bucketed by (organism, location) and the
// buckets are evaluated in parallel.
type Detector struct {
	Window  time.Duration
	Workers int
}

func NewDetector(window time.Duration, workers int) *Detector {
	if workers < 1 {
		workers = 1
	}
	return &Detector{
		Window:  window,
		Workers: workers,
	}
}

type bucketKey struct {
	organism string
	location string
}

// Detect returns the deduplicated contact pairs sorted by
// (PatientID1, PatientID2, Organism, Location).
func (d *Detector) Detect(ctx context.Context, records []model.ExposureRecord) ([]model.ContactPair, error) {
	buckets := make(map[bucketKey][]model.ExposureRecord)
	var keys []bucketKey
	for _, r := range records {
		k := bucketKey{organism: r.Organism, location: r.Location}
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], r)
	}

	// One result slot per bucket, so workers never share a slice.
	partial := make([][]model.ContactPair, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.Workers, 1))
	for i, k := range keys {
		bucket := buckets[k]
		if len(bucket) < 2 {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partial[i] = d.scanBucket(bucket)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return union(partial...), nil
}

func (d *Detector) scanBucket(bucket []model.ExposureRecord) []model.ContactPair {
	var out []model.ContactPair
	for i := 0; i < len(bucket); i++ {
		for j := i + 1; j < len(bucket); j++ {
			if p, ok := Match(bucket[i], bucket[j], d.Window); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

// Match applies the contact predicate to two exposure records and returns
// the canonical pair. The predicate is symmetric, so argument order does not
// matter.
//
// The later of the two admissions may be no later than either collection
// date + w, and the earlier of the two discharges no earlier than either
// collection date - w. Stays that merely sit inside each other's windows
// without touching still match; the predicate does not test latestStart <=
// earliestEnd.
func Match(a, b model.ExposureRecord, w time.Duration) (model.ContactPair, bool) {
	if a.PatientID == b.PatientID {
		return model.ContactPair{}, false
	}
	if a.Organism != b.Organism || a.Location != b.Location {
		return model.ContactPair{}, false
	}

	latestStart := maxTime(a.StayStart, b.StayStart)
	earliestEnd := minTime(a.StayEnd, b.StayEnd)

	if latestStart.After(a.CollectionDate.Add(w)) || latestStart.After(b.CollectionDate.Add(w)) {
		return model.ContactPair{}, false
	}
	if earliestEnd.Before(a.CollectionDate.Add(-w)) || earliestEnd.Before(b.CollectionDate.Add(-w)) {
		return model.ContactPair{}, false
	}

	p1, p2 := a.PatientID, b.PatientID
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return model.ContactPair{
		PatientID1: p1,
		PatientID2: p2,
		Organism:   a.Organism,
		Location:   a.Location,
	}, true
}

// CrossProduct evaluates Match over every ordered pair of records and keeps
// those already in canonical order. It is quadratic in len(records) and
// exists as the reference the bucketed Detect must agree with.
func CrossProduct(records []model.ExposureRecord, w time.Duration) []model.ContactPair {
	var out []model.ContactPair
	for _, a := range records {
		for _, b := range records {
			if a.PatientID >= b.PatientID {
				continue
			}
			if p, ok := Match(a, b, w); ok {
				out = append(out, p)
			}
		}
	}
	return union(out)
}

// union merges partial results, drops duplicates and sorts the rest.
func union(parts ...[]model.ContactPair) []model.ContactPair {
	seen := make(map[model.ContactPair]struct{})
	var out []model.ContactPair
	for _, part := range parts {
		for _, p := range part {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
