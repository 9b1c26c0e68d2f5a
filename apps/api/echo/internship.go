package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core/application"
	"github.com/trezcool/stagi/core/internship"
)

type internshipApi struct {
	svc    internship.Service
	appSvc application.Service
}

func registerInternshipAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := internshipApi{
		svc:    deps.InternshipSvc,
		appSvc: deps.ApplicationSvc,
	}

	ig := g.Group("/internships")

	// public endpoints: candidates browse open positions and their form schema
	ig.GET("", api.list)
	ig.GET("/:id", api.retrieve)
	ig.GET("/:id/steps", api.steps)

	// admin endpoints; per-route middleware so the public GETs above survive
	ig.POST("", api.create, jwt, adminMiddleware())
	ig.PUT("/:id", api.update, jwt, adminMiddleware())
	ig.DELETE("", api.destroyMultiple, jwt, adminMiddleware())
	ig.DELETE("/:id", api.destroy, jwt, adminMiddleware())
	ig.POST("/:id/steps", api.createStep, jwt, adminMiddleware())
}

// Handlers

func (api *internshipApi) list(ctx echo.Context) error {
	filter := new(internship.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []internship.Internship{})
	}
	filter.Clean()

	// the public listing only exposes open internships
	if claims, err := getContextClaims(ctx); err != nil || !claims.IsAdmin {
		open := true
		filter.IsOpen = &open
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	inships, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying internships")
	}
	if inships == nil {
		inships = []internship.Internship{}
	}
	return ctx.JSON(http.StatusOK, inships)
}

func (api *internshipApi) retrieve(ctx echo.Context) error {
	inship, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inship)
}

// steps returns the ordered application flow of an internship; internships
// with no authored steps get the default step sequence.
func (api *internshipApi) steps(ctx echo.Context) error {
	steps, err := api.appSvc.GetSchema(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, steps)
}

func (api *internshipApi) create(ctx echo.Context) error {
	var data internship.NewInternship
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInternship")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	inship, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating internship")
	}
	return ctx.JSON(http.StatusCreated, inship)
}

func (api *internshipApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data internship.UpdateInternship
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInternship")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	inship, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating internship")
	}
	return ctx.JSON(http.StatusOK, inship)
}

func (api *internshipApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting internship")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *internshipApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting internships")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *internshipApi) createStep(ctx echo.Context) error {
	var data application.NewStep
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStep")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	step, err := api.appSvc.CreateStep(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, step)
}
