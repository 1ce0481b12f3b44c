package filter

import "time"

// Visibility controls which toolbar controls a view renders. It has no effect
// on filtering.
type Visibility struct {
	ShowBuildingFilter   bool `json:"show_building_filter" mapstructure:"show_building_filter"`
	ShowStatusFilter     bool `json:"show_status_filter" mapstructure:"show_status_filter"`
	ShowSeverityFilter   bool `json:"show_severity_filter" mapstructure:"show_severity_filter"`
	ShowDateFilter       bool `json:"show_date_filter" mapstructure:"show_date_filter"`
	ShowSensorTypeFilter bool `json:"show_sensor_type_filter" mapstructure:"show_sensor_type_filter"`
}

// DefaultVisibility matches the toolbar defaults: everything but sensor types.
func DefaultVisibility() Visibility {
	return Visibility{
		ShowBuildingFilter: true,
		ShowStatusFilter:   true,
		ShowSeverityFilter: true,
		ShowDateFilter:     true,
	}
}

// Catalog lists the values offered as checkboxes. Values outside it are still
// accepted by Store.Toggle.
type Catalog struct {
	Buildings   []string `json:"buildings" mapstructure:"buildings"`
	Statuses    []string `json:"statuses" mapstructure:"statuses"`
	Severities  []string `json:"severities" mapstructure:"severities"`
	SensorTypes []string `json:"sensor_types" mapstructure:"sensor_types"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Buildings:   []string{"Building A", "Building B", "Building C", "Building D"},
		Statuses:    []string{"Operational", "Warning", "Critical"},
		Severities:  []string{"Low", "Medium", "High", "Critical"},
		SensorTypes: []string{"Temperature", "Humidity", "CO2", "Motion", "Smoke"},
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now; quick ranges resolve against its calendar date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithOnChange installs the view's change callback as the first subscriber.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Store) {
		s.notifier.Subscribe(fn)
	}
}

func WithVisibility(v Visibility) Option {
	return func(s *Store) {
		s.visibility = v
	}
}
