package echoapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core/demographic"
	"github.com/trezcool/icba/core/user"
)

var demographicParams = []string{"age", "major", "gender", "grade_year", "ethnicity", "race"}

type demographicApi struct {
	service *demographic.Service
}

func registerDemographicAPI(g *echo.Group, usrSvc *user.Service, svc *demographic.Service) {
	api := demographicApi{service: svc}
	get := allowMethods(demographicArea, http.MethodGet)
	post := allowMethods(demographicArea, http.MethodPost)
	getOrPost := allowMethods(demographicArea, http.MethodGet, http.MethodPost)

	dg := g.Group("/demographic")
	dg.Any("/create", api.create, loggedInStudent(post, usrSvc)...)
	dg.Any("/update", api.update, loggedInStudent(post, usrSvc)...)
	dg.Any("/delete", api.delete, loggedInStudent(getOrPost, usrSvc)...)
	dg.Any("/select", api.selectOne, loggedInStudent(get, usrSvc)...)
	dg.Any("/form", api.form, get)
}

// Handlers

func (api *demographicApi) create(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, demographicParams...); err != nil {
		return err
	}
	data := new(demographic.NewDemographic)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	demo, err := api.service.Create(ctx.Request().Context(), st.ID, *data)
	if err != nil {
		return err
	}
	return success(ctx, demo)
}

func (api *demographicApi) update(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	data, err := bindUpdateDemographic(ctx)
	if err != nil {
		return err
	}
	demo, err := api.service.Update(ctx.Request().Context(), st.ID, data)
	if err != nil {
		return err
	}
	return success(ctx, demo)
}

func (api *demographicApi) delete(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.service.Delete(ctx.Request().Context(), st.ID); err != nil {
		return err
	}
	return success(ctx)
}

func (api *demographicApi) selectOne(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	demo, err := api.service.Get(ctx.Request().Context(), st.ID)
	if err != nil {
		return err
	}
	return success(ctx, demo)
}

func (api *demographicApi) form(ctx echo.Context) error {
	form, err := api.service.Form(ctx.Request().Context())
	if err != nil {
		return err
	}
	return success(ctx, form)
}

// bindUpdateDemographic reads the fields sent by the client; absent fields stay nil.
func bindUpdateDemographic(ctx echo.Context) (demographic.UpdateDemographic, error) {
	var data demographic.UpdateDemographic
	params, err := ctx.FormParams()
	if err != nil {
		return data, err
	}
	if _, ok := params["major"]; ok {
		major := params.Get("major")
		data.Major = &major
	}

	ints := map[string]**int{
		"age":        &data.Age,
		"gender":     &data.Gender,
		"grade_year": &data.GradeYear,
		"ethnicity":  &data.Ethnicity,
		"race":       &data.Race,
	}
	for name, dest := range ints {
		if _, ok := params[name]; !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(params.Get(name)))
		if err != nil {
			a, _ := contextArea(ctx)
			return data, a.missing(ctx)
		}
		*dest = &n
	}
	return data, nil
}
