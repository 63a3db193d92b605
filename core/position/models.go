package position

import "time"

type Position struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"` // UTC
	X         float64   `json:"x" db:"x"`
	Y         float64   `json:"y" db:"y"`
}

// Range selects positions by timestamp. Bounds are exclusive unless Inclusive is set.
type Range struct {
	Start     time.Time
	End       time.Time
	Inclusive bool
}

// Contains reports whether t falls within the range.
func (r Range) Contains(t time.Time) bool {
	if r.Inclusive {
		return !t.Before(r.Start) && !t.After(r.End)
	}
	return t.After(r.Start) && t.Before(r.End)
}

func (r Range) UTC() Range {
	return Range{Start: r.Start.UTC(), End: r.End.UTC(), Inclusive: r.Inclusive}
}
