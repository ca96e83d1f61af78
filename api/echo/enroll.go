package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enroll"
	"github.com/trezcool/darasa/core/user"
)

type enrollApi struct {
	svc    enroll.Service
	usrSvc user.Service
}

func registerEnrollAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc enroll.Service, usrSvc user.Service) {
	api := enrollApi{svc: svc, usrSvc: usrSvc}

	eg := g.Group("/enrollments")

	// payment gateway callback carries its own signature; no session
	eg.POST("/confirm", api.confirmPayment)

	ag := eg.Group("", jwt)
	ag.POST("", api.create)
	ag.GET("", api.query, adminMiddleware())
}

// Handlers

func (api *enrollApi) create(ctx echo.Context) error {
	var data enroll.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), usr, data.CourseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollApi) confirmPayment(ctx echo.Context) error {
	var data enroll.ConfirmPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConfirmPayment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	enr, err := api.svc.ConfirmPayment(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollApi) query(ctx echo.Context) error {
	enrollments, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}
