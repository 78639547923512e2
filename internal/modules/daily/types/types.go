package types

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date as MM/DD/YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", int(d.Month), d.Day, d.Year)
}

// TimeOfDay is the wall clock offset from midnight.
type TimeOfDay time.Duration

func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond()))
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// GroupKey identifies one station-day.
type GroupKey struct {
	Station string
	Date    Date
}

// Observation is a single parsed temperature reading.
type Observation struct {
	Station     string
	Date        Date
	Time        TimeOfDay
	Temperature float64
}

func (o Observation) Key() GroupKey {
	return GroupKey{Station: o.Station, Date: o.Date}
}

// Summary is the running aggregate for one station-day.
// StartTime/EndTime are the earliest and latest clock times seen, not arrival order.
type Summary struct {
	StartTime TimeOfDay
	EndTime   TimeOfDay
	StartTemp float64
	EndTemp   float64
	High      float64
	Low       float64
	Count     int
}
