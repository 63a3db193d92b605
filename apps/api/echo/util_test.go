package echoapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	. "github.com/trezcool/icba/apps/api/echo"
	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/demographic"
	"github.com/trezcool/icba/core/feedback"
	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/survey"
	"github.com/trezcool/icba/core/user"
	emailsvc "github.com/trezcool/icba/services/email"
	limitsvc "github.com/trezcool/icba/services/limiter"
	"github.com/trezcool/icba/storage/database/sqlxrepos"
	"github.com/trezcool/icba/tests"
)

// now is the frozen time of every API test: Monday 2021-03-01 10:30 UTC.
var now = time.Date(2021, 3, 1, 10, 30, 0, 0, time.UTC)

type env struct {
	db      *sqlx.DB
	app     Server
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T, modifyConf ...func(conf *core.Config)) env {
	t.Helper()

	testutil.FreezeTime(t, now)

	conf := core.NewTestConfig()
	for _, modify := range modifyConf {
		modify(conf)
	}

	// set up DB & repos
	db := testutil.PrepareDB(t)
	validate := testutil.NewValidator()

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(db, sqlxrepos.NewUserRepository(db), mailSvc, limitsvc.NewMemoryLimiter(), validate, conf)
	posSvc := position.NewService(sqlxrepos.NewPositionRepository(db), conf)
	clsSvc := class.NewService(db, sqlxrepos.NewClassRepository(db), usrSvc, posSvc, validate, conf)

	// set up server
	app := NewServer(&Options{
		Conf:           conf,
		UserSvc:        usrSvc,
		PositionSvc:    posSvc,
		ClassSvc:       clsSvc,
		SurveySvc:      survey.NewService(db, sqlxrepos.NewSurveyRepository(db), clsSvc, posSvc, validate, conf),
		DemographicSvc: demographic.NewService(sqlxrepos.NewDemographicRepository(db), validate),
		FeedbackSvc:    feedback.NewService(sqlxrepos.NewFeedbackRepository(db), validate),
	})
	return env{db: db, app: app, mailSvc: mailSvc}
}

type httpTest struct {
	name     string
	method   string
	path     string
	params   url.Values
	wantCode int
	wantData []byte
}

// serve sends params in the query string of GET requests & as a urlencoded body otherwise.
func (e env) serve(method, path string, params url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if method == http.MethodGet {
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(params.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)
	return rec
}

func (e env) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, e.serve(method, tt.path, tt.params))
		})
	}
}

// login returns the session params of a new session of usr.
func login(t *testing.T, e env, usr user.User) url.Values {
	return url.Values{"session_id": {testutil.CreateSession(t, e.db, usr)}}
}

// with returns a copy of params holding the extra key/value pairs.
func with(params url.Values, kv ...string) url.Values {
	cp := make(url.Values, len(params)+len(kv)/2)
	for k, v := range params {
		cp[k] = append([]string(nil), v...)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		cp.Set(kv[i], kv[i+1])
	}
	return cp
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func okResp(t *testing.T, data ...interface{}) []byte {
	resp := map[string]interface{}{"status": "success"}
	if len(data) > 0 {
		resp["data"] = data[0]
	}
	return marshalObj(t, resp)
}

// apiErr is an error the API reports under the given id & text.
func apiErr(id int, text string) *core.AppError {
	return core.NewAppError(id, core.KindUnknown, text)
}

func errResp(t *testing.T, appErr *core.AppError) []byte {
	return marshalObj(t, map[string]interface{}{
		"status": "error",
		"info":   map[string]interface{}{"error_id": appErr.ID, "error_text": appErr.Text},
	})
}

// decodeData unmarshals the `data` of a success response into dest.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decodeData() failed: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("decodeData() failed: unexpected response %s", rec.Body.String())
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		t.Fatalf("decodeData() failed: %v", err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
