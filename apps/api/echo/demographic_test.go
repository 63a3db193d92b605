package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/icba/core/demographic"
	"github.com/trezcool/icba/core/user"
	"github.com/trezcool/icba/tests"
)

func Test_demographicApi(t *testing.T) {
	e := setup(t)
	usr, st := testutil.CreateUser(t, e.db, "jdoe", "", user.GroupStudent)
	sess := login(t, e, usr)

	t.Run("form", func(t *testing.T) {
		var form demographic.Form
		decodeData(t, e.serve(http.MethodGet, "/api/demographic/form", nil), &form)
		assert.Len(t, form.Genders, 4)
		assert.Len(t, form.GradeYears, 8)
		assert.Len(t, form.Ethnicities, 4)
		assert.Len(t, form.Races, 7)
		assert.Equal(t, demographic.Lookup{ID: 1, Name: "Male"}, form.Genders[0])
	})

	params := with(sess, "age", "21", "major", " Physics ", "gender", "1", "grade_year", "3", "ethnicity", "2", "race", "5")
	demo := demographic.Demographic{StudentID: st.ID, Age: 21, Major: "Physics", GenderID: 1, GradeYearID: 3, EthnicityID: 2, RaceID: 5}
	updated := demo
	updated.Age, updated.Major = 22, "Maths"

	e.run(t, []httpTest{
		{name: "select none", path: "/api/demographic/select", params: sess, wantData: errResp(t, demographic.ErrNotFound)},
		{name: "update none", method: http.MethodPost, path: "/api/demographic/update", params: with(sess, "age", "22"), wantData: errResp(t, demographic.ErrNotFound)},
		{
			name: "create missing race", method: http.MethodPost, path: "/api/demographic/create",
			params: with(sess, "age", "21", "major", "Physics", "gender", "1", "grade_year", "3", "ethnicity", "2"),
			wantData: errResp(t, apiErr(203, "Not enough POST data")),
		},
		{
			name: "create bad lookup", method: http.MethodPost, path: "/api/demographic/create",
			params: with(params, "gender", "99"), wantData: errResp(t, demographic.ErrBadLookup),
		},
		{name: "create", method: http.MethodPost, path: "/api/demographic/create", params: params, wantData: okResp(t, demo)},
		{name: "create exists", method: http.MethodPost, path: "/api/demographic/create", params: params, wantData: errResp(t, demographic.ErrExists)},
		{name: "select", path: "/api/demographic/select", params: sess, wantData: okResp(t, demo)},
		{
			name: "update bad lookup", method: http.MethodPost, path: "/api/demographic/update",
			params: with(sess, "race", "99"), wantData: errResp(t, demographic.ErrBadLookup),
		},
		{
			name: "update not a number", method: http.MethodPost, path: "/api/demographic/update",
			params: with(sess, "age", "old"), wantData: errResp(t, apiErr(203, "Not enough POST data")),
		},
		{
			name: "update", method: http.MethodPost, path: "/api/demographic/update",
			params: with(sess, "age", "22", "major", "Maths"), wantData: okResp(t, updated),
		},
		{name: "select updated", path: "/api/demographic/select", params: sess, wantData: okResp(t, updated)},
		{name: "delete", path: "/api/demographic/delete", params: sess, wantData: okResp(t)},
		{name: "delete none", method: http.MethodPost, path: "/api/demographic/delete", params: sess, wantData: errResp(t, demographic.ErrNotFound)},
	})
}
