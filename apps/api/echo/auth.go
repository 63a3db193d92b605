package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/icba/core"
	"github.com/trezcool/icba/core/user"
)

type authApi struct {
	service *user.Service
}

func registerAuthAPI(g *echo.Group, svc *user.Service) {
	api := authApi{service: svc}
	get := allowMethods(authArea, http.MethodGet)
	post := allowMethods(authArea, http.MethodPost)

	ag := g.Group("/auth")
	ag.Any("/register", api.register, post)
	ag.Any("/login", api.login, post)
	ag.Any("/logout", api.logout, get)
	ag.Any("/request_password_reset/:username", api.requestPasswordReset, get)
	ag.Any("/reset_password/:code", api.resetPassword, post)
	ag.Any("/user/group", api.userGroup, get, sessionMiddleware(svc))
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	usr, st, err := api.service.Register(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return success(ctx, echo.Map{"user": usr, "student": st})
}

func (api *authApi) login(ctx echo.Context) error {
	if err := requireParams(ctx, "username", "password"); err != nil {
		return err
	}
	sess, err := api.service.Login(ctx.Request().Context(), ctx.FormValue("username"), ctx.FormValue("password"))
	if err != nil {
		return err
	}
	return success(ctx, sess)
}

// logout is idempotent: unknown sessions are not reported.
func (api *authApi) logout(ctx echo.Context) error {
	token := core.CleanString(ctx.FormValue(sessionParam))
	if token == "" {
		return errNoSessionID
	}
	if err := api.service.Logout(ctx.Request().Context(), token); err != nil {
		return err
	}
	return success(ctx)
}

func (api *authApi) requestPasswordReset(ctx echo.Context) error {
	if err := api.service.RequestPasswordReset(ctx.Request().Context(), ctx.Param("username")); err != nil {
		return err
	}
	return success(ctx)
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	if err := requireParams(ctx, "new_password"); err != nil {
		return err
	}
	if err := api.service.ResetPassword(ctx.Request().Context(), ctx.Param("code"), ctx.FormValue("new_password")); err != nil {
		return err
	}
	return success(ctx)
}

func (api *authApi) userGroup(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	role, err := api.service.RoleOf(usr)
	if err != nil {
		return err
	}
	return success(ctx, echo.Map{"group": role})
}
