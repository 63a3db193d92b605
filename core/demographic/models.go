package demographic

// Lookup kinds
const (
	LookupGender    = "gender"
	LookupGradeYear = "grade_year"
	LookupEthnicity = "ethnicity"
	LookupRace      = "race"
)

var LookupKinds = []string{LookupGender, LookupGradeYear, LookupEthnicity, LookupRace}

type Demographic struct {
	StudentID   string `json:"student_id" db:"student_id"`
	Age         int    `json:"age" db:"age"`
	Major       string `json:"major" db:"major"`
	GenderID    int    `json:"gender" db:"gender_id"`
	GradeYearID int    `json:"grade_year" db:"grade_year_id"`
	EthnicityID int    `json:"ethnicity" db:"ethnicity_id"`
	RaceID      int    `json:"race" db:"race_id"`
}

func (d Demographic) lookups() map[string]int {
	return map[string]int{
		LookupGender:    d.GenderID,
		LookupGradeYear: d.GradeYearID,
		LookupEthnicity: d.EthnicityID,
		LookupRace:      d.RaceID,
	}
}

type Lookup struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Form holds the choices of every lookup field.
type Form struct {
	Genders     []Lookup `json:"gender"`
	GradeYears  []Lookup `json:"grade_year"`
	Ethnicities []Lookup `json:"ethnicity"`
	Races       []Lookup `json:"race"`
}

type NewDemographic struct {
	Age       int    `form:"age" validate:"min=0,max=150"`
	Major     string `form:"major" validate:"max=100"`
	Gender    int    `form:"gender"`
	GradeYear int    `form:"grade_year"`
	Ethnicity int    `form:"ethnicity"`
	Race      int    `form:"race"`
}

// UpdateDemographic holds the fields to update; nil fields are left untouched.
type UpdateDemographic struct {
	Age       *int    `form:"age" validate:"omitempty,min=0,max=150"`
	Major     *string `form:"major" validate:"omitempty,max=100"`
	Gender    *int    `form:"gender"`
	GradeYear *int    `form:"grade_year"`
	Ethnicity *int    `form:"ethnicity"`
	Race      *int    `form:"race"`
}

func (ud UpdateDemographic) apply(d *Demographic) {
	if ud.Age != nil {
		d.Age = *ud.Age
	}
	if ud.Major != nil {
		d.Major = *ud.Major
	}
	if ud.Gender != nil {
		d.GenderID = *ud.Gender
	}
	if ud.GradeYear != nil {
		d.GradeYearID = *ud.GradeYear
	}
	if ud.Ethnicity != nil {
		d.EthnicityID = *ud.Ethnicity
	}
	if ud.Race != nil {
		d.RaceID = *ud.Race
	}
}
