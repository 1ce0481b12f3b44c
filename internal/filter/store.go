package filter

import "time"

// Store holds the filter state of one dashboard view. Every mutation notifies
// subscribers synchronously with the resulting snapshot and returns it.
//
// A Store is not safe for concurrent use; callers serialise access.
type Store struct {
	state      Snapshot
	notifier   Notifier
	visibility Visibility
	now        func() time.Time
	loc        *time.Location
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		state:      EmptySnapshot(),
		visibility: DefaultVisibility(),
		now:        time.Now,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state without notifying.
func (s *Store) Snapshot() Snapshot {
	return s.state.Clone()
}

func (s *Store) Visibility() Visibility {
	return s.visibility
}

// Subscribe adds a change listener.
func (s *Store) Subscribe(fn ChangeFunc) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// Today is the store clock's calendar date in the store location.
func (s *Store) Today() Date {
	return DateOf(s.now().In(s.loc))
}

// Toggle adds value to the facet if absent and removes it if present. Any
// string is accepted. An unknown facet leaves the state untouched but still notifies.
func (s *Store) Toggle(f Facet, value string) Snapshot {
	if set := s.state.Selected(f); set != nil {
		if set.Has(value) {
			delete(set, value)
		} else {
			set[value] = struct{}{}
		}
	}
	return s.commit()
}

// SetDateRange overwrites both bounds from the date inputs and marks the
// range as custom.
func (s *Store) SetDateRange(start, end Date) Snapshot {
	s.state.DateRange = DateRange{Start: start, End: end}
	s.state.ActiveQuickRange = QuickRangeCustom
	return s.commit()
}

// SetStartDate edits the "from" input only.
func (s *Store) SetStartDate(d Date) Snapshot {
	return s.SetDateRange(d, s.state.DateRange.End)
}

// SetEndDate edits the "to" input only.
func (s *Store) SetEndDate(d Date) Snapshot {
	return s.SetDateRange(s.state.DateRange.Start, d)
}

// SelectQuickRange resolves token against today and makes it the active shortcut.
func (s *Store) SelectQuickRange(token QuickRange) Snapshot {
	s.state.DateRange = Resolve(token, s.Today())
	s.state.ActiveQuickRange = token
	return s.commit()
}

// ClearAll returns to the empty snapshot.
func (s *Store) ClearAll() Snapshot {
	s.state = EmptySnapshot()
	return s.commit()
}

func (s *Store) commit() Snapshot {
	out := s.state.Clone()
	s.notifier.Notify(out)
	return out
}
