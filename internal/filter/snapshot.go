package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Facet is one independently filterable dimension.
type Facet string

const (
	FacetBuilding   Facet = "building"
	FacetStatus     Facet = "status"
	FacetSeverity   Facet = "severity"
	FacetSensorType Facet = "sensor_type"
)

var ErrUnknownFacet = errors.New("unknown facet")

// Facets lists every facet in toolbar order.
func Facets() []Facet {
	return []Facet{FacetBuilding, FacetStatus, FacetSeverity, FacetSensorType}
}

// ParseFacet accepts the canonical names plus the plural forms the toolbar uses.
func ParseFacet(s string) (Facet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "building", "buildings":
		return FacetBuilding, nil
	case "status", "statuses":
		return FacetStatus, nil
	case "severity", "severities":
		return FacetSeverity, nil
	case "sensor_type", "sensor_types", "sensortype", "sensortypes":
		return FacetSensorType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFacet, s)
}

// ValueSet is a membership-only set of facet labels.
type ValueSet map[string]struct{}

func NewValueSet(values ...string) ValueSet {
	s := make(ValueSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s ValueSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s ValueSet) Len() int { return len(s) }

// Values returns the members sorted, for stable output.
func (s ValueSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (s ValueSet) clone() ValueSet {
	out := make(ValueSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

func (s ValueSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *ValueSet) UnmarshalJSON(b []byte) error {
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	*s = NewValueSet(values...)
	return nil
}

// Snapshot is the complete filter state at one point in time. Snapshots handed
// out by a Store own their sets; mutating them does not affect the store.
type Snapshot struct {
	Buildings        ValueSet   `json:"selected_buildings"`
	Statuses         ValueSet   `json:"selected_statuses"`
	Severities       ValueSet   `json:"selected_severities"`
	SensorTypes      ValueSet   `json:"selected_sensor_types"`
	DateRange        DateRange  `json:"date_range"`
	ActiveQuickRange QuickRange `json:"active_quick_range,omitempty"`
}

// EmptySnapshot is the canonical initial and cleared state.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Buildings:   ValueSet{},
		Statuses:    ValueSet{},
		Severities:  ValueSet{},
		SensorTypes: ValueSet{},
	}
}

// Selected returns the set for a facet, or nil for an unknown facet.
func (s Snapshot) Selected(f Facet) ValueSet {
	switch f {
	case FacetBuilding:
		return s.Buildings
	case FacetStatus:
		return s.Statuses
	case FacetSeverity:
		return s.Severities
	case FacetSensorType:
		return s.SensorTypes
	}
	return nil
}

// ActiveFilterCount is the badge number: selected values plus one for a date bound.
func (s Snapshot) ActiveFilterCount() int {
	n := s.Buildings.Len() + s.Statuses.Len() + s.Severities.Len() + s.SensorTypes.Len()
	if !s.DateRange.IsZero() {
		n++
	}
	return n
}

func (s Snapshot) IsEmpty() bool {
	return s.ActiveFilterCount() == 0 && s.ActiveQuickRange == QuickRangeNone
}

// Clone deep-copies the sets.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Buildings = s.Buildings.clone()
	out.Statuses = s.Statuses.clone()
	out.Severities = s.Severities.clone()
	out.SensorTypes = s.SensorTypes.clone()
	return out
}
