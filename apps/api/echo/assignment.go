package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/user"
)

type assignmentApi struct {
	svc      assignment.ServiceInterface
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc assignment.ServiceInterface, usrSvc user.ServiceInterface, validate *validator.Validate) {
	api := assignmentApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, roleMiddleware(usrSvc, user.RoleTeacher, user.RoleAdmin))
	ag.POST("/:id/submit", api.submit, roleMiddleware(usrSvc, user.RoleStudent))
	ag.GET("/:id/submissions", api.querySubmissions, roleMiddleware(usrSvc, user.RoleTeacher, user.RoleAdmin))

	// nested under the owning classroom
	g.GET("/classes/:id/assignments", api.queryByClass, jwt)
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	asg, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) queryByClass(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	asgs, err := api.svc.QueryByClass(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	src, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = src.Close() }()

	if err = api.svc.Submit(ctx.Request().Context(), ctxUsr, ctx.Param("id"), fileHdr.Filename, src); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Submission uploaded successfully"})
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}
