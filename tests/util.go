package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/survey"
	"github.com/trezcool/icba/core/user"
	"github.com/trezcool/icba/storage/database"
	"github.com/trezcool/icba/storage/database/sqlxrepos"
)

// PrepareDB returns a freshly migrated sqlite3 DB, removed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := core.NewTestConfig()
	conf.Database.Path = filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB, database.SQLite); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with the core & user validators registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

// CreateUser creates a user in the groups. Members of the `student` group get a student profile.
func CreateUser(t *testing.T, db core.DBExecutor, uname, pwd string, groups ...string) (user.User, user.Student) {
	t.Helper()

	ctx := context.Background()
	repo := sqlxrepos.NewUserRepository(db)
	usr := user.User{
		Username:   uname,
		Email:      uname + "@icba.test",
		FirstName:  "First " + uname,
		LastName:   "Last " + uname,
		DateJoined: core.Now(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	var st user.Student
	for _, g := range groups {
		if err = repo.AddUserToGroup(ctx, usr.ID, g); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
		usr.Groups = append(usr.Groups, g)
		if g == user.GroupStudent {
			if st, err = repo.CreateStudent(ctx, user.Student{ID: uuid.NewString(), UserID: usr.ID}); err != nil {
				t.Fatalf("CreateUser() failed: %v", err)
			}
		}
	}
	return usr, st
}

// CreateSession opens a session for the user, returning its token.
func CreateSession(t *testing.T, db core.DBExecutor, usr user.User, ttl ...time.Duration) string {
	t.Helper()

	expiry := 24 * time.Hour
	if len(ttl) > 0 {
		expiry = ttl[0]
	}
	now := core.Now()
	sess, err := sqlxrepos.NewUserRepository(db).UpsertSession(context.Background(), user.Session{
		Token:     uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess.Token
}

// CreateClass creates a class administered by admin. start & end are HH:MM:SS or empty.
func CreateClass(t *testing.T, db core.DBExecutor, admin user.User, title, start, end string, days ...string) class.Class {
	t.Helper()

	cls := class.Class{
		Title:    title,
		AdminID:  admin.ID,
		Semester: "spring",
		Year:     2021,
		Days:     days,
	}
	if start != "" {
		cls.StartTime = null.StringFrom(start)
	}
	if end != "" {
		cls.EndTime = null.StringFrom(end)
	}
	cls, err := sqlxrepos.NewClassRepository(db).CreateClass(context.Background(), cls)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func Enroll(t *testing.T, db core.DBExecutor, cls class.Class, st user.Student) class.Enrollment {
	t.Helper()

	enr, err := sqlxrepos.NewClassRepository(db).CreateEnrollment(context.Background(), class.Enrollment{ClassID: cls.ID, StudentID: st.ID})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

// CreateSurvey creates a survey on the class with one question per prompt.
func CreateSurvey(t *testing.T, db core.DBExecutor, admin user.User, cls class.Class, prompts ...string) survey.Survey {
	t.Helper()

	ctx := context.Background()
	repo := sqlxrepos.NewSurveyRepository(db)
	srv, err := repo.CreateSurvey(ctx, survey.Survey{AdminID: admin.ID, ClassID: cls.ID})
	if err != nil {
		t.Fatalf("CreateSurvey() failed: %v", err)
	}
	for _, prompt := range prompts {
		q, err := repo.CreateQuestion(ctx, survey.Question{SurveyID: srv.ID, Type: survey.TypeShortAnswer, Prompt: prompt})
		if err != nil {
			t.Fatalf("CreateSurvey() failed: %v", err)
		}
		srv.Questions = append(srv.Questions, q)
	}
	return srv
}

func CreatePosition(t *testing.T, db core.DBExecutor, st user.Student, at time.Time, x, y float64) position.Position {
	t.Helper()

	pos, err := sqlxrepos.NewPositionRepository(db).CreatePosition(context.Background(), position.Position{
		ID:        uuid.NewString(),
		StudentID: st.ID,
		Timestamp: at.UTC().Truncate(time.Second),
		X:         x,
		Y:         y,
	})
	if err != nil {
		t.Fatalf("CreatePosition() failed: %v", err)
	}
	return pos
}

// FreezeTime makes core.Now return `at` until the end of the test.
func FreezeTime(t *testing.T, at time.Time) {
	t.Helper()

	core.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { core.NowFunc = time.Now })
}
