package class_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/user"
	"github.com/trezcool/icba/storage/database/sqlxrepos"
	"github.com/trezcool/icba/tests"
)

func TestService(t *testing.T) {
	db := testutil.PrepareDB(t)
	conf := core.NewTestConfig()
	validate := testutil.NewValidator()
	userSvc := user.NewService(db, sqlxrepos.NewUserRepository(db), nil, nil, validate, conf)
	posSvc := position.NewService(sqlxrepos.NewPositionRepository(db), conf)
	svc := class.NewService(db, sqlxrepos.NewClassRepository(db), userSvc, posSvc, validate, conf)
	ctx := context.Background()

	prof, _ := testutil.CreateUser(t, db, "prof", "", user.GroupProfessor)
	admin, _ := testutil.CreateUser(t, db, "admin", "", user.GroupAdministrator)
	stUsr, st := testutil.CreateUser(t, db, "jdoe", "", user.GroupStudent)

	nc := class.NewClass{Title: " Physics ", Admin: "prof", Semester: "spring", Year: 2021, StartTime: "10:00", EndTime: "11:00", Days: "mon,wed"}

	var cls class.Class
	t.Run("create", func(t *testing.T) {
		var err error
		cls, err = svc.Create(ctx, admin, nc)
		require.NoError(t, err)
		assert.Equal(t, "Physics", cls.Title)
		assert.Equal(t, prof.ID, cls.AdminID)
		assert.Equal(t, null.StringFrom("10:00:00"), cls.StartTime)
		assert.Equal(t, []string{"monday", "wednesday"}, cls.Days)

		got, err := svc.Get(ctx, strconv.Itoa(cls.ID))
		require.NoError(t, err)
		assert.Equal(t, cls, got)

		classes, err := svc.ListAdministered(ctx, prof)
		require.NoError(t, err)
		assert.Equal(t, []class.Class{cls}, classes)
	})

	t.Run("create errors", func(t *testing.T) {
		tests := []struct {
			name    string
			caller  user.User
			modify  func(nc *class.NewClass)
			wantErr error
		}{
			{name: "student", caller: stUsr, modify: func(nc *class.NewClass) {}, wantErr: class.ErrNoPermission},
			{name: "exists", caller: prof, modify: func(nc *class.NewClass) {}, wantErr: class.ErrClassExists},
			{name: "unknown admin", caller: prof, modify: func(nc *class.NewClass) { nc.Admin = "nobody" }, wantErr: class.ErrAdminNotFound},
			{name: "bad schedule", caller: prof, modify: func(nc *class.NewClass) { nc.Year, nc.EndTime = 2022, "09:00" }, wantErr: class.ErrInvalidSchedule},
			{name: "bad days", caller: prof, modify: func(nc *class.NewClass) { nc.Year, nc.Days = 2022, "someday" }, wantErr: class.ErrInvalidSchedule},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				nc := nc
				tt.modify(&nc)
				_, err := svc.Create(ctx, tt.caller, nc)
				assert.Equal(t, tt.wantErr, err)
			})
		}

		_, err := svc.Create(ctx, prof, class.NewClass{Title: "Poetry", Admin: "prof"})
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("enroll", func(t *testing.T) {
		_, err := svc.Enroll(ctx, stUsr, st.ID, strconv.Itoa(cls.ID))
		assert.Equal(t, class.ErrNoPermission, err)
		_, err = svc.Enroll(ctx, prof, "not-a-uuid", strconv.Itoa(cls.ID))
		assert.Equal(t, class.ErrStudentNotFound, err)
		_, err = svc.Enroll(ctx, prof, uuid.NewString(), strconv.Itoa(cls.ID))
		assert.Equal(t, class.ErrStudentNotFound, err)
		_, err = svc.Enroll(ctx, prof, st.ID, "abc")
		assert.Equal(t, class.ErrNotFound, err)

		enr, err := svc.Enroll(ctx, prof, st.ID, strconv.Itoa(cls.ID))
		require.NoError(t, err)
		assert.Equal(t, st.ID, enr.StudentID)

		_, err = svc.Enroll(ctx, prof, st.ID, strconv.Itoa(cls.ID))
		assert.Equal(t, class.ErrAlreadyEnrolled, err)
	})

	t.Run("movement summary", func(t *testing.T) {
		at := func(day, hour, min int) time.Time { return time.Date(2021, 3, day, hour, min, 0, 0, time.UTC) }
		mon := testutil.CreatePosition(t, db, st, at(1, 10, 30), 1, 1)
		testutil.CreatePosition(t, db, st, at(2, 10, 30), 2, 2) // tuesday
		testutil.CreatePosition(t, db, st, at(3, 9, 59), 3, 3)
		wedEnd := testutil.CreatePosition(t, db, st, at(3, 11, 0), 4, 4)
		testutil.CreatePosition(t, db, st, at(8, 10, 30), 5, 5) // next monday

		// a second enrolled student, recording during the same slot
		_, other := testutil.CreateUser(t, db, "jane", "", user.GroupStudent)
		testutil.Enroll(t, db, cls, other)
		otherMon := testutil.CreatePosition(t, db, other, at(1, 10, 30), 6, 6)
		// not enrolled
		_, outsider := testutil.CreateUser(t, db, "outsider", "", user.GroupStudent)
		testutil.CreatePosition(t, db, outsider, at(1, 10, 30), 7, 7)

		summary, err := svc.MovementSummary(ctx, prof, strconv.Itoa(cls.ID), "03/01/2021", "03/07/2021")
		require.NoError(t, err)
		assert.Equal(t, map[string]map[string][]position.Position{
			"2021-03-01": {st.ID: {mon}, other.ID: {otherMon}},
			"2021-03-03": {st.ID: {wedEnd}},
		}, summary)

		_, err = svc.MovementSummary(ctx, stUsr, strconv.Itoa(cls.ID), "03/01/2021", "03/07/2021")
		assert.Equal(t, class.ErrNoPermission, err)
		_, err = svc.MovementSummary(ctx, prof, strconv.Itoa(cls.ID), "2021-03-01", "03/07/2021")
		assert.Equal(t, class.ErrInvalidDateRange, err)
		_, err = svc.MovementSummary(ctx, prof, strconv.Itoa(cls.ID), "01/01/2020", "03/07/2021")
		assert.Equal(t, class.ErrInvalidDateRange, err)
	})
}
