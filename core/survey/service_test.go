package survey_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/survey"
	"github.com/trezcool/icba/core/user"
	"github.com/trezcool/icba/storage/database/sqlxrepos"
	"github.com/trezcool/icba/tests"
)

type fixtures struct {
	db   *sqlx.DB
	conf *core.Config
	svc  *survey.Service
	prof user.User
	st   user.Student
	cls  class.Class
}

// setup creates a professor's 10:00-11:00 class with a 2 questions survey, and a student who recorded
// positions at 09:50, 10:30 & 12:00 on 2021-03-01 (UTC).
func setup(t *testing.T) fixtures {
	t.Helper()

	db := testutil.PrepareDB(t)
	conf := core.NewTestConfig()
	validate := testutil.NewValidator()
	posSvc := position.NewService(sqlxrepos.NewPositionRepository(db), conf)
	classSvc := class.NewService(db, sqlxrepos.NewClassRepository(db), nil, posSvc, validate, conf)

	f := fixtures{
		db:   db,
		conf: conf,
		svc:  survey.NewService(db, sqlxrepos.NewSurveyRepository(db), classSvc, posSvc, validate, conf),
	}
	f.prof, _ = testutil.CreateUser(t, db, "prof", "", user.GroupProfessor)
	_, f.st = testutil.CreateUser(t, db, "jdoe", "", user.GroupStudent)
	f.cls = testutil.CreateClass(t, db, f.prof, "Physics", "10:00:00", "11:00:00")
	testutil.CreateSurvey(t, db, f.prof, f.cls, "How was it?", "What did you learn?")

	day := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreatePosition(t, db, f.st, day.Add(9*time.Hour+50*time.Minute), 1, 1)
	testutil.CreatePosition(t, db, f.st, day.Add(10*time.Hour+30*time.Minute), 2, 2)
	testutil.CreatePosition(t, db, f.st, day.Add(12*time.Hour), 3, 3)

	testutil.FreezeTime(t, day.Add(11*time.Hour+15*time.Minute))
	return f
}

func TestService_Generate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	classID := strconv.Itoa(f.cls.ID)

	inst, err := f.svc.Generate(ctx, f.st, classID)
	require.NoError(t, err)
	assert.Equal(t, "2021-03-01", inst.GeneratedOn)

	detail, err := f.svc.Get(ctx, f.st, strconv.Itoa(inst.ID))
	require.NoError(t, err)
	require.Len(t, detail.Questions, 2)
	assert.Equal(t, "How was it?", detail.Questions[0].Prompt)
	assert.Equal(t, "What did you learn?", detail.Questions[1].Prompt)
	require.Len(t, detail.Positions, 1)
	assert.Equal(t, float64(2), detail.Positions[0].X)
	assert.True(t, detail.Open())

	t.Run("once per day", func(t *testing.T) {
		_, err := f.svc.Generate(ctx, f.st, classID)
		assert.Equal(t, survey.ErrAlreadyGenerated, err)

		testutil.FreezeTime(t, time.Date(2021, 3, 2, 11, 15, 0, 0, time.UTC))
		next, err := f.svc.Generate(ctx, f.st, classID)
		require.NoError(t, err)
		assert.Equal(t, "2021-03-02", next.GeneratedOn)

		// nothing was recorded during that day's slot
		detail, err := f.svc.Get(ctx, f.st, strconv.Itoa(next.ID))
		require.NoError(t, err)
		assert.Len(t, detail.Questions, 2)
		assert.Empty(t, detail.Positions)
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := f.svc.Generate(ctx, f.st, "abc")
		assert.Equal(t, survey.ErrClassNotFound, err)
		_, err = f.svc.Generate(ctx, f.st, strconv.Itoa(f.cls.ID+1))
		assert.Equal(t, survey.ErrClassNotFound, err)
	})

	t.Run("class without survey", func(t *testing.T) {
		other := testutil.CreateClass(t, f.db, f.prof, "Poetry", "", "")
		_, err := f.svc.Generate(ctx, f.st, strconv.Itoa(other.ID))
		assert.Equal(t, survey.ErrNoSurvey, err)
	})
}

func TestService_Respond(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inst, err := f.svc.Generate(ctx, f.st, strconv.Itoa(f.cls.ID))
	require.NoError(t, err)
	instID := strconv.Itoa(inst.ID)

	detail, err := f.svc.Get(ctx, f.st, instID)
	require.NoError(t, err)
	q1 := strconv.Itoa(detail.Questions[0].EntryID)
	q2 := strconv.Itoa(detail.Questions[1].EntryID)
	p1 := strconv.Itoa(detail.Positions[0].EntryID)

	open, err := f.svc.ListOpen(ctx, f.st)
	require.NoError(t, err)
	assert.Equal(t, []survey.InstanceSummary{inst}, open)

	t.Run("not owner", func(t *testing.T) {
		_, other := testutil.CreateUser(t, f.db, "other", "", user.GroupStudent)

		_, err := f.svc.Get(ctx, other, instID)
		assert.Equal(t, survey.ErrNotOwner, err)
		_, err = f.svc.Respond(ctx, other, instID, map[string]string{q1: "hijacked"})
		assert.Equal(t, survey.ErrNotOwner, err)
	})

	t.Run("unknown instance", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.st, "abc")
		assert.Equal(t, survey.ErrInstanceNotFound, err)
		_, err = f.svc.Respond(ctx, f.st, strconv.Itoa(inst.ID+10), map[string]string{q1: "?"})
		assert.Equal(t, survey.ErrInstanceNotFound, err)
	})

	results, err := f.svc.Respond(ctx, f.st, instID, map[string]string{q1: "great", "abc": "?", "99999": "?"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{q1: survey.ResultCreated, "abc": survey.ResultBadID, "99999": survey.ResultBadID}, results)

	results, err = f.svc.Respond(ctx, f.st, instID, map[string]string{q1: "ok", q2: "vectors", p1: "front row"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{q1: survey.ResultUpdated, q2: survey.ResultCreated, p1: survey.ResultCreated}, results)

	detail, err = f.svc.Get(ctx, f.st, instID)
	require.NoError(t, err)
	assert.Equal(t, "ok", detail.Questions[0].Response.String)
	assert.Equal(t, "front row", detail.Positions[0].Response.String)
	assert.False(t, detail.Open())

	open, err = f.svc.ListOpen(ctx, f.st)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestService_OpenWindow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, f.st, strconv.Itoa(f.cls.ID))
	require.NoError(t, err)

	testutil.FreezeTime(t, time.Date(2021, 3, 9, 9, 0, 0, 0, time.UTC))
	open, err := f.svc.ListOpen(ctx, f.st)
	require.NoError(t, err)
	assert.Empty(t, open)

	f.conf.Survey.OpenWindow = 9 * 24 * time.Hour
	open, err = f.svc.ListOpen(ctx, f.st)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestService_Questions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	stUsr, _ := testutil.CreateUser(t, f.db, "student", "", user.GroupStudent)

	srv, err := f.svc.GetByClass(ctx, strconv.Itoa(f.cls.ID))
	require.NoError(t, err)
	surveyID := strconv.Itoa(srv.ID)

	tests := []struct {
		name    string
		caller  user.User
		nq      survey.NewQuestion
		wantErr error
	}{
		{name: "student", caller: stUsr, nq: survey.NewQuestion{Type: "essay", Prompt: "Why?"}, wantErr: survey.ErrNoPermission},
		{name: "invalid type", caller: f.prof, nq: survey.NewQuestion{Type: "poll", Prompt: "Why?"}, wantErr: survey.ErrInvalidQuestionType},
		{name: "ok", caller: f.prof, nq: survey.NewQuestion{Type: " Essay ", Prompt: "Why?"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := f.svc.AddQuestion(ctx, tc.caller, surveyID, tc.nq)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, survey.TypeEssay, q.Type)
			assert.Equal(t, 3, q.Ordinal)
		})
	}

	t.Run("missing prompt", func(t *testing.T) {
		_, err := f.svc.AddQuestion(ctx, f.prof, surveyID, survey.NewQuestion{Type: "essay"})
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("create", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.prof, strconv.Itoa(f.cls.ID))
		assert.Equal(t, survey.ErrSurveyExists, err)
		_, err = f.svc.Create(ctx, stUsr, strconv.Itoa(f.cls.ID))
		assert.Equal(t, survey.ErrNoPermission, err)
	})
}
