package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core/application"
)

type applicationApi struct {
	svc application.Service
}

func registerApplicationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := applicationApi{svc: deps.ApplicationSvc}

	ag := g.Group("/applications", jwt)
	ag.POST("", api.submit)
	ag.GET("/mine", api.mine)

	// admin endpoints
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id/status", api.updateStatus, adminMiddleware())

	// schema administration
	sg := g.Group("/steps", jwt, adminMiddleware())
	sg.PUT("/:id", api.updateStep)
	sg.DELETE("/:id", api.destroyStep)
	sg.POST("/:id/fields", api.createField)

	fg := g.Group("/fields", jwt, adminMiddleware())
	fg.PUT("/:id", api.updateField)
	fg.DELETE("/:id", api.destroyField)
}

// Handlers

// submit records one completed application for the authenticated user.
// Expected business outcomes (unknown internship, closed internship, duplicate
// application, missing fields) come back from the service as typed errors and
// are translated by the HTTP error handler; the row either exists afterwards
// or it does not.
func (api *applicationApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data application.SubmitApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitApplication")
	}

	app, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *applicationApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	apps, err := api.svc.Query(ctx.Request().Context(), &application.QueryFilter{ApplicantID: claims.Subject}, nil)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) query(ctx echo.Context) error {
	filter := new(application.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []application.Application{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	apps, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

// retrieve serves an application to its applicant or to an admin.
func (api *applicationApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	app, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !claims.IsAdmin && app.ApplicantID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) updateStatus(ctx echo.Context) error {
	var data application.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	app, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) updateStep(ctx echo.Context) error {
	var data application.UpdateStep
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStep")
	}

	step, err := api.svc.UpdateStep(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, step)
}

func (api *applicationApi) destroyStep(ctx echo.Context) error {
	if err := api.svc.DeleteSteps(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting step")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *applicationApi) createField(ctx echo.Context) error {
	var data application.NewField
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewField")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	fld, err := api.svc.CreateField(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fld)
}

func (api *applicationApi) updateField(ctx echo.Context) error {
	var data application.UpdateField
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateField")
	}

	fld, err := api.svc.UpdateField(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fld)
}

func (api *applicationApi) destroyField(ctx echo.Context) error {
	if err := api.svc.DeleteFields(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting field")
	}
	return ctx.NoContent(http.StatusNoContent)
}
