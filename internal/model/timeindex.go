package model

import (
	"fmt"
	"time"
)

// HoursPerYear is the length of the production planning horizon.
const HoursPerYear = 8760

// ReferenceYear anchors hour indexes to calendar time. It is a non-leap year so
// that one year is exactly HoursPerYear hours.
var ReferenceYear = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// TimeIndex is the ordered set of hourly steps shared by every component of a model.
type TimeIndex struct {
	n int
}

func NewTimeIndex(hours int) (TimeIndex, error) {
	if hours <= 0 {
		return TimeIndex{}, fmt.Errorf("time index must have at least one step, got %d", hours)
	}
	return TimeIndex{n: hours}, nil
}

// Year is the full production horizon.
func Year() TimeIndex { return TimeIndex{n: HoursPerYear} }

func (t TimeIndex) Len() int { return t.n }

// Start returns the calendar timestamp of step i.
func (t TimeIndex) Start(i int) time.Time {
	return ReferenceYear.Add(time.Duration(i) * time.Hour)
}

// Check returns an error unless values covers every step exactly.
func (t TimeIndex) Check(name string, values []float64) error {
	if len(values) != t.n {
		return fmt.Errorf("%s: expected %d hourly values, got %d", name, t.n, len(values))
	}
	return nil
}

// Resolution is the temporal resolution of values supplied in a request.
type Resolution string

const (
	Res1Y    Resolution = "1Y"
	Res1M    Resolution = "1M"
	Res1W    Resolution = "1W"
	Res1D    Resolution = "1D"
	Res1H    Resolution = "1h"
	Res15Min Resolution = "15min"
	Res1Min  Resolution = "1min"
)

// Slots is the number of values covering one reference year.
func (r Resolution) Slots() (int, error) {
	switch r {
	case Res1Y:
		return 1, nil
	case Res1M:
		return 12, nil
	case Res1W:
		return 52, nil
	case Res1D:
		return 365, nil
	case Res1H:
		return HoursPerYear, nil
	case Res15Min:
		return HoursPerYear * 4, nil
	case Res1Min:
		return HoursPerYear * 60, nil
	default:
		return 0, fmt.Errorf("unknown resolution %q", r)
	}
}

// SubHourly reports whether several values fall into one hour.
func (r Resolution) SubHourly() bool {
	return r == Res15Min || r == Res1Min
}

// Coarse reports whether one value spans several hours.
func (r Resolution) Coarse() bool {
	return r == Res1Y || r == Res1M || r == Res1W || r == Res1D
}

// SlotOfHour maps an hour of the reference year to the index of the coarse
// slot containing it. Weeks are consecutive 168 hour blocks from January 1st;
// the trailing day belongs to the last week.
func (r Resolution) SlotOfHour(h int) int {
	switch r {
	case Res1Y:
		return 0
	case Res1M:
		return int(ReferenceYear.Add(time.Duration(h)*time.Hour).Month()) - 1
	case Res1W:
		w := h / (7 * 24)
		if w > 51 {
			w = 51
		}
		return w
	case Res1D:
		return h / 24
	default:
		return h
	}
}
