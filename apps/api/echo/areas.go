package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/user"
)

const contextAreaKey = "area"

// area groups the endpoints sharing an error id range, e.g. 300-306 for positions.
type area struct {
	name           string
	notLoggedIn    *core.AppError
	methodMismatch *core.AppError
	missingGet     *core.AppError
	missingPost    *core.AppError
}

func newArea(name string, base int, notLoggedIn, methodText string) area {
	return area{
		name:           name,
		notLoggedIn:    core.NewAppError(base, core.KindAuthRequired, notLoggedIn),
		methodMismatch: core.NewAppError(base+1, core.KindMethodMismatch, methodText),
		missingGet:     core.NewAppError(base+2, core.KindMissingParameter, "Not enough GET data"),
		missingPost:    core.NewAppError(base+3, core.KindMissingParameter, "Not enough POST data"),
	}
}

var (
	authArea = area{
		name:           "auth",
		notLoggedIn:    user.ErrNotLoggedIn,
		methodMismatch: core.NewAppError(101, core.KindMethodMismatch, "Wrong request type"),
		missingGet:     core.NewAppError(102, core.KindMissingParameter, "Not enough GET data"),
		missingPost:    core.NewAppError(103, core.KindMissingParameter, "Not enough POST data"),
	}
	demographicArea = newArea("demographic", 200, "No session_id in parameters of url", "Wrong request type")
	classArea       = newArea("class", 400, "No logged in user", "Wrong request type")
	surveyArea      = newArea("survey", 500, "No logged in user", "Wrong request method")
	feedbackArea    = newArea("feedback", 600, "No logged in user", "Wrong request method")
	positionArea    = func() area {
		a := newArea("position", 300, "No logged in user", "Wrong request method")
		// positions only read query data
		a.missingPost = a.missingGet
		return a
	}()

	// errNoSessionID is reported by the auth area when the session_id param is absent
	errNoSessionID = core.NewAppError(100, core.KindAuthRequired, "No session_id in parameters of url")

	errMissingData = core.NewAppError(0, core.KindMissingParameter, "Not enough data")
)

// missing returns the area's "not enough data" error for the request's method.
func (a area) missing(ctx echo.Context) *core.AppError {
	appErr := a.missingPost
	if ctx.Request().Method == http.MethodGet {
		appErr = a.missingGet
	}
	if appErr == nil {
		return errMissingData
	}
	return appErr
}

func contextArea(ctx echo.Context) (area, bool) {
	a, ok := ctx.Get(contextAreaKey).(area)
	return a, ok
}

// allowMethods tags the request with its area & rejects methods the endpoint does not serve.
func allowMethods(a area, methods ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(contextAreaKey, a)
			method := ctx.Request().Method
			for _, m := range methods {
				if m == method {
					return next(ctx)
				}
			}
			return a.methodMismatch
		}
	}
}

// requireParams returns the area's "not enough data" error unless every param is present.
func requireParams(ctx echo.Context, names ...string) error {
	for _, name := range names {
		if ctx.FormValue(name) == "" {
			a, _ := contextArea(ctx)
			return a.missing(ctx)
		}
	}
	return nil
}
