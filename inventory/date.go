// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package inventory

import (
	"time"

	"github.com/stayd-io/stayd/fault"
)

// DefaultKey - key of the value used when no date specific value exists
const DefaultKey = "default"

const dateLayout = "2006-01-02"

// Date - a calendar date without time or zone
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate - validated date
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	d := DateOf(t)
	if d.Year != year || d.Month != month || d.Day != day {
		return Date{}, fault.ErrInvalidDate
	}
	return d, nil
}

// ParseDate - from YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if nil != err {
		return Date{}, fault.ErrInvalidDate
	}
	return DateOf(t), nil
}

// DateOf - the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String - YYYY-MM-DD, also the store key for date scoped values
func (d Date) String() string {
	return d.midnight().Format(dateLayout)
}

// AddDays - calendar arithmetic, DST cannot shift the result
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// DaysUntil - whole calendar days from d to other
func (d Date) DaysUntil(other Date) int {
	return int(other.midnight().Sub(d.midnight()) / (24 * time.Hour))
}

// Weekday - day of the week
func (d Date) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

// IsZero - unset date
func (d Date) IsZero() bool {
	return 0 == d.Year && 0 == d.Month && 0 == d.Day
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
