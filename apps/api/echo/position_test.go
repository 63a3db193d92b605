package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/user"
	"github.com/trezcool/icba/tests"
)

var errNotEnoughPosition = apiErr(302, "Not enough GET data")

func Test_positionApi_create(t *testing.T) {
	e := setup(t)
	usr, st := testutil.CreateUser(t, e.db, "jdoe", "", user.GroupStudent)
	prof, _ := testutil.CreateUser(t, e.db, "prof", "", user.GroupProfessor)
	sess := login(t, e, usr)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			var pos position.Position
			decodeData(t, e.serve(method, "/api/position/create", with(sess, "x", "1.5", "y", "-2")), &pos)
			assert.NotEmpty(t, pos.ID)
			assert.Equal(t, st.ID, pos.StudentID)
			assert.Equal(t, 1.5, pos.X)
			assert.Equal(t, -2.0, pos.Y)
			assert.True(t, now.Equal(pos.Timestamp))
		})
	}

	e.run(t, []httpTest{
		{name: "missing y", path: "/api/position/create", params: with(sess, "x", "1"), wantData: errResp(t, errNotEnoughPosition)},
		{name: "not a number", path: "/api/position/create", params: with(sess, "x", "abc", "y", "1"), wantData: errResp(t, errNotEnoughPosition)},
		{name: "missing y (POST)", method: http.MethodPost, path: "/api/position/create", params: with(sess, "x", "1"), wantData: errResp(t, errNotEnoughPosition)},
		{name: "not a student", path: "/api/position/create", params: with(login(t, e, prof), "x", "1", "y", "1"), wantData: errResp(t, user.ErrNoStudent)},
	})
}

func Test_positionApi_select(t *testing.T) {
	e := setup(t)
	usr, st := testutil.CreateUser(t, e.db, "jdoe", "", user.GroupStudent)
	_, other := testutil.CreateUser(t, e.db, "jane", "", user.GroupStudent)
	sess := login(t, e, usr)

	p2 := testutil.CreatePosition(t, e.db, st, now.Add(-time.Hour), 3, 4)
	p1 := testutil.CreatePosition(t, e.db, st, now.Add(-2*time.Hour), 1, 2)
	p3 := testutil.CreatePosition(t, e.db, st, now.Add(-30*time.Minute), 5, 6)
	otherPos := testutil.CreatePosition(t, e.db, other, now, 0, 0)

	e.run(t, []httpTest{
		{name: "all", path: "/api/position/select/all", params: sess, wantData: okResp(t, []position.Position{p1, p2, p3})},
		{name: "one", path: "/api/position/select", params: with(sess, "position_id", p2.ID), wantData: okResp(t, p2)},
		{name: "missing id", path: "/api/position/select", params: sess, wantData: errResp(t, errNotEnoughPosition)},
		{name: "bad id", path: "/api/position/select", params: with(sess, "position_id", "lol"), wantData: errResp(t, position.ErrNotFound)},
		{name: "not owner", path: "/api/position/select", params: with(sess, "position_id", otherPos.ID), wantData: errResp(t, position.ErrNotOwner)},
	})
}

func Test_positionApi_summary(t *testing.T) {
	e := setup(t)
	usr, st := testutil.CreateUser(t, e.db, "jdoe", "", user.GroupStudent)
	sess := login(t, e, usr)

	at := func(hour, min int) time.Time { return time.Date(2021, 3, 1, hour, min, 0, 0, time.UTC) }
	testutil.CreatePosition(t, e.db, st, at(9, 0), 0, 0)
	p1 := testutil.CreatePosition(t, e.db, st, at(9, 30), 1, 1)
	testutil.CreatePosition(t, e.db, st, at(10, 0), 2, 2)

	e.run(t, []httpTest{
		{
			name: "bounds are exclusive", path: "/api/position/summary",
			params:   with(sess, "start_time", "2021-03-01T09:00:00", "end_time", "2021-03-01T10:00:00Z"),
			wantData: okResp(t, []position.Position{p1}),
		},
		{
			name: "empty range", path: "/api/position/summary",
			params:   with(sess, "start_time", "2021-03-02T09:00", "end_time", "2021-03-02T10:00"),
			wantData: okResp(t, []position.Position{}),
		},
		{
			name: "missing end", path: "/api/position/summary",
			params: with(sess, "start_time", "2021-03-01T09:00:00"), wantData: errResp(t, errNotEnoughPosition),
		},
		{
			name: "bad datetime", path: "/api/position/summary",
			params: with(sess, "start_time", "yesterday", "end_time", "2021-03-01T10:00:00"), wantData: errResp(t, position.ErrInvalidTime),
		},
		{
			name: "blank datetime", path: "/api/position/summary",
			params: with(sess, "start_time", " ", "end_time", "2021-03-01T10:00:00"), wantData: errResp(t, position.ErrInvalidTimeFmt),
		},
	})
}
