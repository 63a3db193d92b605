package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core/class"
	"github.com/trezcool/icba/core/user"
)

type classApi struct {
	service *class.Service
}

func registerClassAPI(g *echo.Group, usrSvc *user.Service, svc *class.Service) {
	api := classApi{service: svc}
	get := allowMethods(classArea, http.MethodGet)
	post := allowMethods(classArea, http.MethodPost)

	cg := g.Group("/class")
	cg.Any("/create", api.create, loggedIn(post, usrSvc)...)
	cg.Any("/select/all", api.selectAll, loggedIn(get, usrSvc)...)
	cg.Any("/enroll", api.enroll, loggedIn(post, usrSvc)...)
	cg.Any("/movement_summary", api.movementSummary, loggedIn(post, usrSvc)...)
}

// Handlers

func (api *classApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	data := new(class.NewClass)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	cls, err := api.service.Create(ctx.Request().Context(), usr, *data)
	if err != nil {
		return err
	}
	return success(ctx, cls)
}

func (api *classApi) selectAll(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	classes, err := api.service.ListAdministered(ctx.Request().Context(), usr)
	if err != nil {
		return err
	}
	return success(ctx, classes)
}

func (api *classApi) enroll(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "student", "class"); err != nil {
		return err
	}
	enr, err := api.service.Enroll(ctx.Request().Context(), usr, ctx.FormValue("student"), ctx.FormValue("class"))
	if err != nil {
		return err
	}
	return success(ctx, enr)
}

func (api *classApi) movementSummary(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "class", "start_date", "end_date"); err != nil {
		return err
	}
	summary, err := api.service.MovementSummary(
		ctx.Request().Context(),
		usr,
		ctx.FormValue("class"),
		ctx.FormValue("start_date"),
		ctx.FormValue("end_date"),
	)
	if err != nil {
		return err
	}
	return success(ctx, summary)
}
