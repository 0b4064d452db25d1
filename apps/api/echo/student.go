package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", authed...)
	sg.GET("", api.list)
	sg.POST("", api.create)

	// detail endpoints
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentApi) list(ctx echo.Context) error {
	stds, err := api.svc.List(ctx.Request().Context(), getContextIdentity(ctx))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, stds)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), getContextIdentity(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{Message: "Student added", ID: std.ID})
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	std, err := api.svc.Update(ctx.Request().Context(), getContextIdentity(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, StudentResponse{Message: "Student updated", Student: std})
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), getContextIdentity(ctx), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Student deleted"})
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

type StudentResponse struct {
	Message string          `json:"message"`
	Student student.Student `json:"student"`
}
