package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type (
	envelope struct {
		Status string      `json:"status"`
		Data   interface{} `json:"data,omitempty"`
		Info   *errorInfo  `json:"info,omitempty"`
	}

	errorInfo struct {
		ErrorID   int    `json:"error_id"`
		ErrorText string `json:"error_text"`
	}
)

// success renders `{"status": "success", "data": data}`; a nil data is left out.
func success(ctx echo.Context, data ...interface{}) error {
	env := envelope{Status: statusSuccess}
	if len(data) > 0 {
		env.Data = data[0]
	}
	return ctx.JSON(http.StatusOK, env)
}
