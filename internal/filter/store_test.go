package filter

import (
	"reflect"
	"testing"
	"time"
)

// fixedClock pins "now" to 2025-02-15 10:00 UTC.
func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, time.February, 15, 10, 0, 0, 0, time.UTC) }
}

func newTestStore(opts ...Option) *Store {
	base := []Option{WithClock(fixedClock()), WithLocation(time.UTC)}
	return NewStore(append(base, opts...)...)
}

func TestStore_Toggle_Involution(t *testing.T) {
	t.Parallel()

	for _, f := range Facets() {
		f := f
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()
			s := newTestStore()
			s.Toggle(f, "pre-existing")
			before := s.Snapshot().Selected(f).Values()

			s.Toggle(f, "Building A")
			got := s.Toggle(f, "Building A")

			if !reflect.DeepEqual(got.Selected(f).Values(), before) {
				t.Fatalf("double toggle changed %s: %v -> %v", f, before, got.Selected(f).Values())
			}
		})
	}
}

func TestStore_Toggle_BuildingScenario(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	got := s.Toggle(FacetBuilding, "Building A")
	if !reflect.DeepEqual(got.Buildings.Values(), []string{"Building A"}) {
		t.Fatalf("after first toggle: %v", got.Buildings.Values())
	}
	got = s.Toggle(FacetBuilding, "Building A")
	if got.Buildings.Len() != 0 {
		t.Fatalf("after second toggle: %v", got.Buildings.Values())
	}
}

func TestStore_Toggle_AcceptsUnknownValues(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	got := s.Toggle(FacetSeverity, "Apocalyptic")
	if !got.Severities.Has("Apocalyptic") {
		t.Fatalf("value outside catalog was rejected: %v", got.Severities.Values())
	}
}

func TestStore_Toggle_UnknownFacetNotifiesWithoutChange(t *testing.T) {
	t.Parallel()

	calls := 0
	s := newTestStore(WithOnChange(func(Snapshot) { calls++ }))
	got := s.Toggle(Facet("floor"), "3")
	if !got.IsEmpty() {
		t.Fatalf("unknown facet mutated state: %+v", got)
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
}

func TestStore_ClearAll_Reset(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.Toggle(FacetBuilding, "Building B")
	s.Toggle(FacetStatus, "Warning")
	s.Toggle(FacetSeverity, "High")
	s.Toggle(FacetSensorType, "CO2")
	s.SelectQuickRange(QuickRangeLast7Days)

	got := s.ClearAll()
	if !reflect.DeepEqual(got, EmptySnapshot()) {
		t.Fatalf("ClearAll = %+v; want empty snapshot", got)
	}
	if !got.IsEmpty() || got.ActiveFilterCount() != 0 {
		t.Fatalf("cleared snapshot reports active filters")
	}
}

func TestStore_QuickRangeAndDateEdit_MutualExclusion(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	got := s.SelectQuickRange(QuickRangeLast7Days)
	if got.ActiveQuickRange != QuickRangeLast7Days {
		t.Fatalf("active quick range = %q", got.ActiveQuickRange)
	}
	if got.DateRange.Start.String() != "2025-02-08" || got.DateRange.End.String() != "2025-02-15" {
		t.Fatalf("range = %s..%s", got.DateRange.Start, got.DateRange.End)
	}

	got = s.SetEndDate(NewDate(2025, time.February, 12))
	if got.ActiveQuickRange != QuickRangeCustom {
		t.Fatalf("after date edit active quick range = %q; want custom", got.ActiveQuickRange)
	}
	if got.DateRange.Start.String() != "2025-02-08" || got.DateRange.End.String() != "2025-02-12" {
		t.Fatalf("SetEndDate must keep start: %s..%s", got.DateRange.Start, got.DateRange.End)
	}

	got = s.SelectQuickRange(QuickRangeLastMonth)
	if got.ActiveQuickRange != QuickRangeLastMonth || got.DateRange.Start.String() != "2025-01-01" {
		t.Fatalf("reselecting quick range: %+v", got)
	}

	got = s.SetStartDate(Date{})
	if got.ActiveQuickRange != QuickRangeCustom || !got.DateRange.Start.IsZero() || got.DateRange.End.String() != "2025-01-31" {
		t.Fatalf("clearing start: %+v", got)
	}
}

func TestStore_SetDateRange_InvertedKept(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	start := NewDate(2025, time.February, 20)
	end := NewDate(2025, time.February, 10)
	got := s.SetDateRange(start, end)
	if got.DateRange.Start != start || got.DateRange.End != end {
		t.Fatalf("inverted range was altered: %+v", got.DateRange)
	}
	if !got.DateRange.Inverted() {
		t.Fatalf("expected Inverted() to report the range")
	}
}

func TestStore_SelectQuickRange_UsesLocation(t *testing.T) {
	t.Parallel()

	// 2025-02-15 22:30 UTC is already the 16th in UTC+3.
	clock := func() time.Time { return time.Date(2025, time.February, 15, 22, 30, 0, 0, time.UTC) }
	s := NewStore(WithClock(clock), WithLocation(time.FixedZone("UTC+3", 3*3600)))
	got := s.SelectQuickRange(QuickRangeToday)
	if got.DateRange.Start.String() != "2025-02-16" {
		t.Fatalf("today in UTC+3 = %s", got.DateRange.Start)
	}
}

func TestStore_NotifiesEveryMutationInOrder(t *testing.T) {
	t.Parallel()

	var seen []Snapshot
	s := newTestStore(WithOnChange(func(snap Snapshot) { seen = append(seen, snap) }))

	s.Toggle(FacetStatus, "Critical")
	s.SetStartDate(NewDate(2025, time.February, 1))
	s.SetStartDate(NewDate(2025, time.February, 2))
	s.SelectQuickRange(QuickRangeToday)
	s.ClearAll()

	if len(seen) != 5 {
		t.Fatalf("expected 5 notifications, got %d", len(seen))
	}
	if !seen[0].Statuses.Has("Critical") {
		t.Fatalf("first notification must carry the toggled value")
	}
	if seen[1].DateRange.Start.Day != 1 || seen[2].DateRange.Start.Day != 2 {
		t.Fatalf("keystroke notifications out of order: %s, %s", seen[1].DateRange.Start, seen[2].DateRange.Start)
	}
	if seen[3].ActiveQuickRange != QuickRangeToday || !seen[3].Statuses.Has("Critical") {
		t.Fatalf("quick range notification lost other facets: %+v", seen[3])
	}
	if !seen[4].IsEmpty() {
		t.Fatalf("last notification should be empty: %+v", seen[4])
	}
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	t.Parallel()

	var received Snapshot
	s := newTestStore(WithOnChange(func(snap Snapshot) { received = snap }))
	got := s.Toggle(FacetBuilding, "Building C")

	got.Buildings["Injected"] = struct{}{}
	received.Buildings["Injected too"] = struct{}{}

	if now := s.Snapshot(); now.Buildings.Len() != 1 {
		t.Fatalf("store state leaked through snapshot: %v", now.Buildings.Values())
	}
}

func TestStore_SubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	var order []string
	unsubA := s.Subscribe(func(Snapshot) { order = append(order, "a") })
	s.Subscribe(func(Snapshot) { order = append(order, "b") })

	s.Toggle(FacetBuilding, "x")
	unsubA()
	unsubA()
	s.Toggle(FacetBuilding, "x")

	if !reflect.DeepEqual(order, []string{"a", "b", "b"}) {
		t.Fatalf("unexpected call order %v", order)
	}
}

func TestStore_DefaultsAndVisibility(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if !s.Snapshot().IsEmpty() {
		t.Fatalf("new store must start empty")
	}
	if v := s.Visibility(); v != DefaultVisibility() || v.ShowSensorTypeFilter {
		t.Fatalf("unexpected default visibility %+v", v)
	}

	custom := Visibility{ShowSensorTypeFilter: true}
	if got := NewStore(WithVisibility(custom)).Visibility(); got != custom {
		t.Fatalf("WithVisibility ignored: %+v", got)
	}
}

func TestSnapshot_ActiveFilterCount(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.Toggle(FacetBuilding, "Building A")
	s.Toggle(FacetBuilding, "Building B")
	s.Toggle(FacetSeverity, "High")
	if got := s.Snapshot().ActiveFilterCount(); got != 3 {
		t.Fatalf("count without dates = %d", got)
	}
	s.SetEndDate(NewDate(2025, time.February, 1))
	if got := s.Snapshot().ActiveFilterCount(); got != 4 {
		t.Fatalf("count with one date bound = %d", got)
	}
}
