package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/icba/core"
)

var (
	errHttpNotFound = core.NewAppError(0, core.KindNotFound, http.StatusText(http.StatusNotFound))
	errInternal     = core.NewAppError(0, core.KindUnknown, http.StatusText(http.StatusInternalServerError))

	kindStatuses = map[core.Kind]int{
		core.KindAuthRequired:     http.StatusUnauthorized,
		core.KindMethodMismatch:   http.StatusMethodNotAllowed,
		core.KindMissingParameter: http.StatusBadRequest,
		core.KindNotFound:         http.StatusNotFound,
		core.KindConflict:         http.StatusConflict,
		core.KindForbidden:        http.StatusForbidden,
		core.KindInvalid:          http.StatusUnprocessableEntity,
		core.KindTooManyRequests:  http.StatusTooManyRequests,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering every error as an error envelope.
// Errors are sent with HTTP 200 unless strictStatusCodes is set; unknown routes & server errors keep their code.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, strictStatusCodes bool, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		appErr, code := classify(err, ctx)
		if appErr == errInternal {
			usr, _ := getContextUser(ctx)
			if logger != nil {
				logger.Error(fmt.Sprintf("%s %s: %v", ctx.Request().Method, ctx.Path(), err), errors.WithStack(err), usr)
			}
			if core.IsShutdown(err) && signalShutdown != nil {
				signalShutdown()
			}
		}
		if code == 0 {
			code = http.StatusOK
			if status, ok := kindStatuses[appErr.Kind]; ok && strictStatusCodes {
				code = status
			}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, envelope{
				Status: statusError,
				Info:   &errorInfo{ErrorID: appErr.ID, ErrorText: appErr.Text},
			})
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// classify maps err to the AppError reported to the client. A non zero code is sent whatever the mode.
func classify(err error, ctx echo.Context) (*core.AppError, int) {
	a, _ := contextArea(ctx)

	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return a.missing(ctx), 0
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		return a.missing(ctx), 0
	}
	if appErr, ok := core.AsAppError(err); ok {
		return appErr, 0
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return errHttpNotFound, http.StatusNotFound
		case http.StatusMethodNotAllowed:
			if a.methodMismatch != nil {
				return a.methodMismatch, 0
			}
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return a.missing(ctx), 0
		}
		return core.NewAppError(0, core.KindUnknown, http.StatusText(httpErr.Code)), httpErr.Code
	}
	return errInternal, http.StatusInternalServerError
}
