package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core/survey"
	"github.com/trezcool/icba/core/user"
)

// instanceParam holds the instance id on get & respond; every other param of respond is an entry id.
const instanceParam = "survey_id"

type surveyApi struct {
	service *survey.Service
}

func registerSurveyAPI(g *echo.Group, usrSvc *user.Service, svc *survey.Service) {
	api := surveyApi{service: svc}
	post := allowMethods(surveyArea, http.MethodPost)

	sg := g.Group("/survey")
	sg.Any("/create", api.create, loggedIn(post, usrSvc)...)
	sg.Any("/add_question", api.addQuestion, loggedIn(post, usrSvc)...)
	sg.Any("/get_by_class", api.getByClass, loggedIn(post, usrSvc)...)
	sg.Any("/generate", api.generate, loggedInStudent(post, usrSvc)...)
	sg.Any("/open_surveys", api.openSurveys, loggedInStudent(post, usrSvc)...)
	sg.Any("/get", api.get, loggedInStudent(post, usrSvc)...)
	sg.Any("/respond", api.respond, loggedInStudent(post, usrSvc)...)
}

// Handlers

func (api *surveyApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "class"); err != nil {
		return err
	}
	srv, err := api.service.Create(ctx.Request().Context(), usr, ctx.FormValue("class"))
	if err != nil {
		return err
	}
	return success(ctx, srv)
}

func (api *surveyApi) addQuestion(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "survey", "type", "prompt"); err != nil {
		return err
	}
	data := survey.NewQuestion{Type: ctx.FormValue("type"), Prompt: ctx.FormValue("prompt")}
	q, err := api.service.AddQuestion(ctx.Request().Context(), usr, ctx.FormValue("survey"), data)
	if err != nil {
		return err
	}
	return success(ctx, q)
}

func (api *surveyApi) getByClass(ctx echo.Context) error {
	if err := requireParams(ctx, "class"); err != nil {
		return err
	}
	srv, err := api.service.GetByClass(ctx.Request().Context(), ctx.FormValue("class"))
	if err != nil {
		return err
	}
	return success(ctx, srv)
}

func (api *surveyApi) generate(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, "class"); err != nil {
		return err
	}
	inst, err := api.service.Generate(ctx.Request().Context(), st, ctx.FormValue("class"))
	if err != nil {
		return err
	}
	return success(ctx, inst)
}

func (api *surveyApi) openSurveys(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	insts, err := api.service.ListOpen(ctx.Request().Context(), st)
	if err != nil {
		return err
	}
	return success(ctx, insts)
}

func (api *surveyApi) get(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, instanceParam); err != nil {
		return err
	}
	detail, err := api.service.Get(ctx.Request().Context(), st, ctx.FormValue(instanceParam))
	if err != nil {
		return err
	}
	return success(ctx, detail)
}

func (api *surveyApi) respond(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = requireParams(ctx, instanceParam); err != nil {
		return err
	}
	params, err := ctx.FormParams()
	if err != nil {
		return err
	}
	responses := make(map[string]string, len(params))
	for key := range params {
		if key == sessionParam || key == instanceParam {
			continue
		}
		responses[key] = params.Get(key)
	}

	results, err := api.service.Respond(ctx.Request().Context(), st, ctx.FormValue(instanceParam), responses)
	if err != nil {
		return err
	}
	return success(ctx, results)
}
