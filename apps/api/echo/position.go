package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core/position"
	"github.com/trezcool/icba/core/user"
)

type positionApi struct {
	service *position.Service
}

func registerPositionAPI(g *echo.Group, usrSvc *user.Service, svc *position.Service) {
	api := positionApi{service: svc}
	get := allowMethods(positionArea, http.MethodGet)
	getOrPost := allowMethods(positionArea, http.MethodGet, http.MethodPost)

	pg := g.Group("/position")
	pg.Any("/create", api.create, loggedInStudent(getOrPost, usrSvc)...)
	pg.Any("/select", api.selectOne, loggedInStudent(get, usrSvc)...)
	pg.Any("/select/all", api.selectAll, loggedInStudent(get, usrSvc)...)
	pg.Any("/summary", api.summary, loggedInStudent(get, usrSvc)...)
}

// Handlers

func (api *positionApi) create(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var x, y float64
	err = echo.FormFieldBinder(ctx).
		MustFloat64("x", &x).
		MustFloat64("y", &y).
		BindError()
	if err != nil {
		return err
	}

	pos, err := api.service.Record(ctx.Request().Context(), st.ID, x, y)
	if err != nil {
		return err
	}
	return success(ctx, pos)
}

func (api *positionApi) selectOne(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "position_id"); err != nil {
		return err
	}
	pos, err := api.service.Get(ctx.Request().Context(), st.ID, ctx.FormValue("position_id"))
	if err != nil {
		return err
	}
	return success(ctx, pos)
}

func (api *positionApi) selectAll(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	positions, err := api.service.ListAll(ctx.Request().Context(), st.ID)
	if err != nil {
		return err
	}
	return success(ctx, positions)
}

func (api *positionApi) summary(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "start_time", "end_time"); err != nil {
		return err
	}
	positions, err := api.service.Summary(ctx.Request().Context(), st.ID, ctx.FormValue("start_time"), ctx.FormValue("end_time"))
	if err != nil {
		return err
	}
	return success(ctx, positions)
}
