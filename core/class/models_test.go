package class

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestNewClass_parseSchedule(t *testing.T) {
	tests := []struct {
		name      string
		nc        NewClass
		wantStart null.String
		wantEnd   null.String
		wantDays  []string
		wantOk    bool
	}{
		{name: "unscheduled", wantDays: []string{}, wantOk: true},
		{
			name:      "slot & days",
			nc:        NewClass{StartTime: "10:00", EndTime: "11:15", Days: "Fri, monday,wed,mon"},
			wantStart: null.StringFrom("10:00:00"),
			wantEnd:   null.StringFrom("11:15:00"),
			wantDays:  []string{"monday", "wednesday", "friday"},
			wantOk:    true,
		},
		{name: "start only", nc: NewClass{StartTime: "10:00"}},
		{name: "bad time", nc: NewClass{StartTime: "10h", EndTime: "11:00"}},
		{name: "start after end", nc: NewClass{StartTime: "11:00", EndTime: "10:00"}},
		{name: "empty slot", nc: NewClass{StartTime: "10:00", EndTime: "10:00"}},
		{name: "bad day", nc: NewClass{Days: "monday,funday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, days, ok := tt.nc.parseSchedule()
			assert.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				return
			}
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantDays, days)
		})
	}
}

func TestClass_Window(t *testing.T) {
	date := time.Date(2021, 3, 1, 15, 4, 5, 0, time.UTC) // monday

	cls := Class{StartTime: null.StringFrom("10:00:00"), EndTime: null.StringFrom("11:00:00")}
	rng := cls.Window(date, time.UTC)
	assert.Equal(t, time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2021, 3, 1, 11, 0, 0, 0, time.UTC), rng.End)
	assert.True(t, rng.Inclusive)
	assert.True(t, rng.Contains(rng.End))

	// as scanned from a postgres TIME column
	cls = Class{StartTime: null.StringFrom("0000-01-01T10:00:00Z"), EndTime: null.StringFrom("0000-01-01T11:00:00Z")}
	assert.Equal(t, rng, cls.Window(date, time.UTC))
	cls.NormalizeTimes()
	assert.Equal(t, null.StringFrom("10:00:00"), cls.StartTime)
	assert.Equal(t, null.StringFrom("11:00:00"), cls.EndTime)

	rng = Class{}.Window(date, time.UTC)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	assert.Equal(t, time.Date(2021, 3, 1, 23, 59, 59, 0, time.UTC), rng.End)
}

func TestClass_MeetsOn(t *testing.T) {
	assert.True(t, Class{}.MeetsOn(time.Sunday))

	cls := Class{Days: []string{"monday", "friday"}}
	assert.True(t, cls.MeetsOn(time.Monday))
	assert.True(t, cls.MeetsOn(time.Friday))
	assert.False(t, cls.MeetsOn(time.Tuesday))
}
