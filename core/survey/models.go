package survey

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Question types
const (
	TypeShortAnswer = "short_answer"
	TypeEssay       = "essay"
	TypeRange       = "range"
)

// Entry kinds
const (
	EntryQuestion = "question"
	EntryPosition = "position"
)

// Response results
const (
	ResultCreated = "created"
	ResultUpdated = "updated"
	ResultBadID   = "bad id"
)

const dateLayout = "2006-01-02"

var QuestionTypes = []string{TypeShortAnswer, TypeEssay, TypeRange}

func IsQuestionType(t string) bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

type Survey struct {
	ID        int        `json:"id" db:"id"`
	AdminID   int        `json:"admin_id" db:"admin_id"`
	ClassID   int        `json:"class_id" db:"class_id"`
	Questions []Question `json:"questions,omitempty" db:"-"`
}

type Question struct {
	ID       int    `json:"id" db:"id"`
	SurveyID int    `json:"survey_id" db:"survey_id"`
	Type     string `json:"type" db:"type"`
	Prompt   string `json:"prompt" db:"prompt"`
	Ordinal  int    `json:"ordinal" db:"ordinal"`
}

// Instance is a student's snapshot of a survey for one day.
type Instance struct {
	ID          int       `db:"id"`
	SurveyID    int       `db:"survey_id"`
	StudentID   string    `db:"student_id"`
	GeneratedOn time.Time `db:"generated_on"` // calendar date
	CreatedAt   time.Time `db:"created_at"`   // UTC
}

func (inst Instance) Summary() InstanceSummary {
	return InstanceSummary{
		ID:          inst.ID,
		SurveyID:    inst.SurveyID,
		GeneratedOn: inst.GeneratedOn.Format(dateLayout),
	}
}

type InstanceSummary struct {
	ID          int    `json:"id"`
	SurveyID    int    `json:"survey_id"`
	GeneratedOn string `json:"generated_on"`
}

// QuestionEntry is the snapshot of a survey question within an instance.
type QuestionEntry struct {
	EntryID    int         `json:"entry_id" db:"entry_id"`
	QuestionID int         `json:"question_id" db:"question_id"`
	Type       string      `json:"type" db:"type"`
	Prompt     string      `json:"prompt" db:"prompt"`
	Response   null.String `json:"response" db:"response"`
}

// PositionEntry is the snapshot of a position recorded during the class slot, within an instance.
type PositionEntry struct {
	EntryID    int         `json:"entry_id" db:"entry_id"`
	PositionID string      `json:"position_id" db:"position_id"`
	X          float64     `json:"x" db:"x"`
	Y          float64     `json:"y" db:"y"`
	Timestamp  time.Time   `json:"timestamp" db:"timestamp"`
	Response   null.String `json:"response" db:"response"`
}

type InstanceDetail struct {
	Instance  InstanceSummary `json:"instance"`
	Questions []QuestionEntry `json:"questions"`
	Positions []PositionEntry `json:"positions"`
}

// Open reports whether some entry of the instance has no response.
func (d InstanceDetail) Open() bool {
	for _, q := range d.Questions {
		if !q.Response.Valid {
			return true
		}
	}
	for _, p := range d.Positions {
		if !p.Response.Valid {
			return true
		}
	}
	return false
}

// NewQuestion contains information needed to add a question to a survey.
type NewQuestion struct {
	Type   string `form:"type" validate:"required"`
	Prompt string `form:"prompt" validate:"required"`
}
