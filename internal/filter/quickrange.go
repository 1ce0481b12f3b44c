package filter

import (
	"errors"
	"fmt"
	"strings"
)

// QuickRange is a named date shortcut shown in the toolbar.
type QuickRange string

const (
	QuickRangeNone       QuickRange = ""
	QuickRangeToday      QuickRange = "today"
	QuickRangeYesterday  QuickRange = "yesterday"
	QuickRangeLast7Days  QuickRange = "last7days"
	QuickRangeLast30Days QuickRange = "last30days"
	QuickRangeThisMonth  QuickRange = "thismonth"
	QuickRangeLastMonth  QuickRange = "lastmonth"
	QuickRangeCustom     QuickRange = "custom"
)

var ErrUnknownQuickRange = errors.New("unknown quick range")

// QuickRangeOption pairs a token with its button label.
type QuickRangeOption struct {
	Label string     `json:"label"`
	Value QuickRange `json:"value"`
}

var quickRangeOptions = []QuickRangeOption{
	{Label: "Today", Value: QuickRangeToday},
	{Label: "Yesterday", Value: QuickRangeYesterday},
	{Label: "Last 7 Days", Value: QuickRangeLast7Days},
	{Label: "Last 30 Days", Value: QuickRangeLast30Days},
	{Label: "This Month", Value: QuickRangeThisMonth},
	{Label: "Last Month", Value: QuickRangeLastMonth},
}

// QuickRanges returns the toolbar shortcuts in display order.
func QuickRanges() []QuickRangeOption {
	out := make([]QuickRangeOption, len(quickRangeOptions))
	copy(out, quickRangeOptions)
	return out
}

// ParseQuickRange accepts any token including custom, case-insensitively.
func ParseQuickRange(s string) (QuickRange, error) {
	q := QuickRange(strings.ToLower(strings.TrimSpace(s)))
	if q == QuickRangeCustom {
		return q, nil
	}
	for _, opt := range quickRangeOptions {
		if opt.Value == q {
			return q, nil
		}
	}
	return QuickRangeNone, fmt.Errorf("%w: %q", ErrUnknownQuickRange, s)
}

// Resolve maps a quick range token to concrete inclusive bounds relative to now.
// It never fails: custom and unrecognised tokens leave the start open and end today.
func Resolve(token QuickRange, now Date) DateRange {
	switch token {
	case QuickRangeToday:
		return DateRange{Start: now, End: now}
	case QuickRangeYesterday:
		y := now.AddDays(-1)
		return DateRange{Start: y, End: y}
	case QuickRangeLast7Days:
		return DateRange{Start: now.AddDays(-7), End: now}
	case QuickRangeLast30Days:
		return DateRange{Start: now.AddDays(-30), End: now}
	case QuickRangeThisMonth:
		return DateRange{Start: now.FirstOfMonth(), End: now}
	case QuickRangeLastMonth:
		first := now.FirstOfMonth()
		return DateRange{
			Start: NewDate(first.Year, first.Month-1, 1),
			End:   first.AddDays(-1),
		}
	default:
		return DateRange{End: now}
	}
}
