package core

import "time"

// ISOWeek identifies one ISO-8601 calendar week and its Monday–Sunday
// bounds. Year is the ISO week-numbering year, which differs from the
// calendar year for dates near the year boundary (Dec 31 can fall in week
// 1 of the next year, Jan 1–3 in the last week of the previous one).
type ISOWeek struct {
	Year      int
	Week      int
	WeekStart time.Time
	WeekEnd   time.Time
}

// ISOWeekOf maps a date to its ISO-8601 week. Time of day is ignored and
// the date is interpreted in UTC. Total over any valid date: weeks run
// Monday–Sunday and week 1 is the week containing January 4th.
func ISOWeekOf(t time.Time) ISOWeek {
	d := midnightUTC(t)

	// Shift to the Thursday of d's own week; its calendar year is the
	// ISO year.
	thursday := d.AddDate(0, 0, 4-isoWeekday(d))
	year := thursday.Year()

	// Week 1's Monday is the Monday on or before January 4th.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1Monday := jan4.AddDate(0, 0, 1-isoWeekday(jan4))

	week := int(thursday.Sub(week1Monday)/(7*24*time.Hour)) + 1
	start := week1Monday.AddDate(0, 0, (week-1)*7)

	return ISOWeek{
		Year:      year,
		Week:      week,
		WeekStart: start,
		WeekEnd:   start.AddDate(0, 0, 6),
	}
}

// isoWeekday returns the ISO day of week, Monday=1 through Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
