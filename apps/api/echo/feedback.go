package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core/feedback"
)

type feedbackApi struct {
	service *feedback.Service
}

func registerFeedbackAPI(g *echo.Group, svc *feedback.Service) {
	api := feedbackApi{service: svc}

	// anonymous
	g.Any("/feedback/submit", api.submit, allowMethods(feedbackArea, http.MethodPost))
}

// Handlers

// submit stores the feedback. Feedback is write-only, nothing is sent back.
func (api *feedbackApi) submit(ctx echo.Context) error {
	if err := requireParams(ctx, "feedback"); err != nil {
		return err
	}
	if _, err := api.service.Submit(ctx.Request().Context(), feedback.NewFeedback{Text: ctx.FormValue("feedback")}); err != nil {
		return err
	}
	return success(ctx)
}
