package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/user"
)

const (
	sessionParam      = "session_id"
	contextUserKey    = "user"
	contextStudentKey = "student"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// sessionMiddleware resolves the `session_id` param (query or form) into the logged in user.
func sessionMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			a, _ := contextArea(ctx)
			token := core.CleanString(ctx.FormValue(sessionParam))
			if token == "" && a.name == authArea.name {
				return errNoSessionID
			}

			usr, err := svc.Resolve(ctx.Request().Context(), token)
			if err != nil {
				if errors.Cause(err) == user.ErrNotLoggedIn && a.notLoggedIn != nil {
					return a.notLoggedIn
				}
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// studentMiddleware loads the student profile of the logged in user.
func studentMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			st, err := svc.StudentOf(ctx.Request().Context(), usr)
			if err != nil {
				return err
			}
			ctx.Set(contextStudentKey, st)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}

func getContextStudent(ctx echo.Context) (user.Student, error) {
	if st, ok := ctx.Get(contextStudentKey).(user.Student); ok {
		return st, nil
	}
	return user.Student{}, errors.New("student object not found in echo.Context")
}

// loggedIn returns the middlewares of the endpoints reserved to logged in users.
func loggedIn(allow echo.MiddlewareFunc, svc *user.Service) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{allow, sessionMiddleware(svc)}
}

// loggedInStudent is loggedIn for endpoints which also need the user's student profile.
func loggedInStudent(allow echo.MiddlewareFunc, svc *user.Service) []echo.MiddlewareFunc {
	return append(loggedIn(allow, svc), studentMiddleware(svc))
}
