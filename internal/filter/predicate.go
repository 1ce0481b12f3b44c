package filter

import "time"

// Entity carries the fields of a dashboard record the filters look at.
type Entity struct {
	BuildingID string
	Status     string
	Severity   string
	SensorType string
	Timestamp  time.Time
}

// Predicate decides whether one entity matches a snapshot.
type Predicate func(Entity) bool

// Compile builds the predicate for s. Facets are ANDed, values within a facet
// ORed, and an empty facet matches everything. The entity's day is taken in
// its timestamp's location. The predicate keeps its own copy of s.
func Compile(s Snapshot) Predicate {
	snap := s.Clone()
	rng := snap.DateRange
	return func(e Entity) bool {
		if !matchSet(snap.Buildings, e.BuildingID) ||
			!matchSet(snap.Statuses, e.Status) ||
			!matchSet(snap.Severities, e.Severity) ||
			!matchSet(snap.SensorTypes, e.SensorType) {
			return false
		}
		if rng.IsZero() {
			return true
		}
		return rng.Contains(DateOf(e.Timestamp))
	}
}

func matchSet(set ValueSet, v string) bool {
	return set.Len() == 0 || set.Has(v)
}

// Apply returns the items whose extracted entity satisfies p, in input order.
func Apply[T any](items []T, p Predicate, extract func(T) Entity) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p(extract(it)) {
			out = append(out, it)
		}
	}
	return out
}
