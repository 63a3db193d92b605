package echoapi_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/user"
	"github.com/trezcool/icba/tests"
)

func TestServer_home(t *testing.T) {
	e := setup(t)

	rec := e.serve(http.MethodGet, "/", nil)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to ICBA API!", string(body))
}

func TestServer_errors(t *testing.T) {
	e := setup(t)
	usr, _ := testutil.CreateUser(t, e.db, "jdoe", "", user.GroupStudent)
	sess := login(t, e, usr)

	e.run(t, []httpTest{
		{name: "unknown route", path: "/api/lol", wantCode: http.StatusNotFound, wantData: errResp(t, apiErr(0, "Not Found"))},
		{name: "trailing slash", path: "/api/position/select/all/", params: sess, wantData: okResp(t, []interface{}{})},
		{name: "auth wrong method", path: "/api/auth/login", wantData: errResp(t, apiErr(101, "Wrong request type"))},
		{name: "demographic wrong method", path: "/api/demographic/create", wantData: errResp(t, apiErr(201, "Wrong request type"))},
		{name: "position wrong method", method: http.MethodDelete, path: "/api/position/create", wantData: errResp(t, apiErr(301, "Wrong request method"))},
		{name: "class wrong method", path: "/api/class/create", wantData: errResp(t, apiErr(401, "Wrong request type"))},
		{name: "survey wrong method", path: "/api/survey/generate", wantData: errResp(t, apiErr(501, "Wrong request method"))},
		{name: "feedback wrong method", path: "/api/feedback/submit", wantData: errResp(t, apiErr(601, "Wrong request method"))},
		// the method is checked before the session
		{name: "wrong method before auth", method: http.MethodPut, path: "/api/class/enroll", wantData: errResp(t, apiErr(401, "Wrong request type"))},
		{name: "auth no session", path: "/api/auth/user/group", wantData: errResp(t, apiErr(100, "No session_id in parameters of url"))},
		{
			name: "auth unknown session", path: "/api/auth/user/group", params: url.Values{"session_id": {"lol"}},
			wantData: errResp(t, user.ErrNotLoggedIn),
		},
		{name: "demographic no session", path: "/api/demographic/select", wantData: errResp(t, apiErr(200, "No session_id in parameters of url"))},
		{name: "position no session", path: "/api/position/select/all", wantData: errResp(t, apiErr(300, "No logged in user"))},
		{name: "class no session", path: "/api/class/select/all", wantData: errResp(t, apiErr(400, "No logged in user"))},
		{
			name: "survey unknown session", method: http.MethodPost, path: "/api/survey/open_surveys",
			params: url.Values{"session_id": {"lol"}}, wantData: errResp(t, apiErr(500, "No logged in user")),
		},
	})
}

func TestServer_strictStatusCodes(t *testing.T) {
	e := setup(t, func(conf *core.Config) { conf.Server.StrictStatusCodes = true })
	usr, _ := testutil.CreateUser(t, e.db, "jdoe", "", user.GroupStudent)
	sess := login(t, e, usr)

	e.run(t, []httpTest{
		{name: "401", path: "/api/position/select/all", wantCode: http.StatusUnauthorized, wantData: errResp(t, apiErr(300, "No logged in user"))},
		{name: "405", path: "/api/feedback/submit", wantCode: http.StatusMethodNotAllowed, wantData: errResp(t, apiErr(601, "Wrong request method"))},
		{
			name: "400", path: "/api/position/select", params: sess,
			wantCode: http.StatusBadRequest, wantData: errResp(t, apiErr(302, "Not enough GET data")),
		},
		{
			name: "404", method: http.MethodPost, path: "/api/auth/login", params: url.Values{"username": {"lol"}, "password": {"lol"}},
			wantCode: http.StatusNotFound, wantData: errResp(t, user.ErrUserNotFound),
		},
		{name: "200", path: "/api/position/select/all", params: sess, wantData: okResp(t, []interface{}{})},
	})
}

func TestServer_headRequest(t *testing.T) {
	e := setup(t)

	req := httptest.NewRequest(http.MethodHead, "/api/feedback/submit", nil)
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
