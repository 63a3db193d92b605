package class

import (
	"sort"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/icba/core/position"
)

const clockLayout = "15:04:05"

// weekday names, by time.Weekday
var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

type Class struct {
	ID        int         `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	AdminID   int         `json:"admin_id" db:"admin_id"`
	Semester  string      `json:"semester" db:"semester"`
	Year      int         `json:"year" db:"year"`
	StartTime null.String `json:"start_time" db:"start_time"` // HH:MM:SS
	EndTime   null.String `json:"end_time" db:"end_time"`     // HH:MM:SS
	Days      []string    `json:"days" db:"-"`
}

// MeetsOn reports whether the class meets on the given weekday. Classes without days meet every day.
func (c Class) MeetsOn(day time.Weekday) bool {
	if len(c.Days) == 0 {
		return true
	}
	for _, d := range c.Days {
		if d == weekdays[day] {
			return true
		}
	}
	return false
}

// Window returns the class's time slot on the calendar date of `date` in loc, bounds included.
// Unscheduled classes span the whole day.
func (c Class) Window(date time.Time, loc *time.Location) position.Range {
	y, m, d := date.In(loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	rng := position.Range{
		Start:     midnight,
		End:       midnight.AddDate(0, 0, 1).Add(-time.Second),
		Inclusive: true,
	}
	if start, ok := parseClock(c.StartTime); ok {
		rng.Start = time.Date(y, m, d, start.Hour(), start.Minute(), start.Second(), 0, loc)
	}
	if end, ok := parseClock(c.EndTime); ok {
		rng.End = time.Date(y, m, d, end.Hour(), end.Minute(), end.Second(), 0, loc)
	}
	return rng
}

// NormalizeTimes rewrites the class times as HH:MM:SS, whatever form the DB driver scanned them in.
func (c *Class) NormalizeTimes() {
	for _, s := range []*null.String{&c.StartTime, &c.EndTime} {
		if t, ok := parseClock(*s); ok {
			*s = null.StringFrom(t.Format(clockLayout))
		} else {
			*s = null.String{}
		}
	}
}

// parseClock parses a time of day; only its clock fields are meaningful.
func parseClock(s null.String) (time.Time, bool) {
	if !s.Valid || s.String == "" {
		return time.Time{}, false
	}
	value := s.String
	// postgres may return "10:00:00" or "0000-01-01T10:00:00Z" depending on the driver settings
	if i := strings.IndexByte(value, 'T'); i >= 0 {
		value = value[i+1:]
	}
	if len(value) > len(clockLayout) {
		value = value[:len(clockLayout)]
	}
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type Enrollment struct {
	ID        int    `json:"id" db:"id"`
	ClassID   int    `json:"class_id" db:"class_id"`
	StudentID string `json:"student_id" db:"student_id"`
}

// NewClass contains information needed to create a class.
type NewClass struct {
	Title     string `form:"title" validate:"required,max=100"`
	Admin     string `form:"admin" validate:"required"` // username
	Semester  string `form:"semester" validate:"required,max=20"`
	Year      int    `form:"year" validate:"required,min=1900,max=9999"`
	StartTime string `form:"start_time"` // HH:MM
	EndTime   string `form:"end_time"`   // HH:MM
	Days      string `form:"days"`       // comma separated weekday names
}

// parseSchedule validates the class times & days, returning times as HH:MM:SS and days by weekday order.
func (nc NewClass) parseSchedule() (start, end null.String, days []string, ok bool) {
	startStr, endStr := strings.TrimSpace(nc.StartTime), strings.TrimSpace(nc.EndTime)
	if (startStr == "") != (endStr == "") {
		return start, end, nil, false
	}
	if startStr != "" {
		startT, err1 := time.Parse("15:04", startStr)
		endT, err2 := time.Parse("15:04", endStr)
		if err1 != nil || err2 != nil || !startT.Before(endT) {
			return start, end, nil, false
		}
		start = null.StringFrom(startT.Format(clockLayout))
		end = null.StringFrom(endT.Format(clockLayout))
	}

	days, ok = parseDays(nc.Days)
	return start, end, days, ok
}

// parseDays parses a comma separated list of weekday names or their 3-letter abbreviations.
func parseDays(s string) ([]string, bool) {
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		day, ok := weekdayByName(part)
		if !ok {
			return nil, false
		}
		seen[day] = true
	}

	ids := make([]int, 0, len(seen))
	for day := range seen {
		ids = append(ids, int(day))
	}
	sort.Ints(ids)
	days := make([]string, 0, len(ids))
	for _, id := range ids {
		days = append(days, weekdays[id])
	}
	return days, true
}

func weekdayByName(name string) (time.Weekday, bool) {
	for i, wd := range weekdays {
		if name == wd || (len(name) == 3 && strings.HasPrefix(wd, name)) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

func WeekdayID(name string) (int, bool) {
	day, ok := weekdayByName(name)
	return int(day), ok
}
