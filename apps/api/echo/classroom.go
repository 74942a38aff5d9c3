package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type classroomApi struct {
	svc      classroom.ServiceInterface
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classroom.ServiceInterface, usrSvc user.ServiceInterface, validate *validator.Validate) {
	api := classroomApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create, roleMiddleware(usrSvc, user.RoleTeacher, user.RoleAdmin))
	cg.GET("", api.query)
	cg.GET("/pending", api.queryPendingApprovals, roleMiddleware(usrSvc, user.RoleTeacher))
	cg.POST("/join", api.join, roleMiddleware(usrSvc, user.RoleStudent))
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/approve", api.approveStudent, roleMiddleware(usrSvc, user.RoleTeacher, user.RoleAdmin))
}

// Handlers

func (api *classroomApi) create(ctx echo.Context) error {
	var data classroom.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classroomApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	clss, err := api.svc.Query(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, clss)
}

func (api *classroomApi) queryPendingApprovals(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	clss, err := api.svc.QueryPendingApprovals(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, clss)
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classroomApi) join(ctx echo.Context) error {
	var data classroom.JoinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	ack, err := api.svc.Join(ctx.Request().Context(), ctxUsr, data.ClassCode)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": string(ack)})
}

func (api *classroomApi) approveStudent(ctx echo.Context) error {
	studentID := ctx.QueryParam("student_id")
	if studentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id is required")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	if err = api.svc.Approve(ctx.Request().Context(), ctxUsr, ctx.Param("id"), studentID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Student approved"})
}
