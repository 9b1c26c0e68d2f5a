package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stagi/core/learning"
)

type learningApi struct {
	svc learning.Service
}

func registerLearningAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := learningApi{svc: deps.LearningSvc}

	lg := g.Group("/learning", jwt)

	// intern endpoints: view the assigned path, tick tasks off
	mg := lg.Group("/me", internMiddleware())
	mg.GET("", api.myProgress)
	mg.PUT("/tasks/:id", api.setTaskDone)

	// admin endpoints
	ag := lg.Group("/paths", adminMiddleware())
	ag.POST("", api.createPath)
	ag.GET("", api.queryPaths)
	ag.GET("/:id", api.retrievePath)
	ag.DELETE("", api.destroyPaths)
	ag.POST("/assign", api.assign)
}

// Handlers

func (api *learningApi) myProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prog, err := api.svc.GetProgress(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *learningApi) setTaskDone(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data SetTaskDoneRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetTaskDoneRequest")
	}

	prog, err := api.svc.SetTaskDone(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.Done)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *learningApi) createPath(ctx echo.Context) error {
	var data learning.NewPath
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPath")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	path, err := api.svc.CreatePath(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating path")
	}
	return ctx.JSON(http.StatusCreated, path)
}

func (api *learningApi) queryPaths(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	paths, err := api.svc.QueryPaths(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying paths")
	}
	if paths == nil {
		paths = []learning.Path{}
	}
	return ctx.JSON(http.StatusOK, paths)
}

func (api *learningApi) retrievePath(ctx echo.Context) error {
	path, err := api.svc.GetPathByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, path)
}

func (api *learningApi) destroyPaths(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeletePaths(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting paths")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *learningApi) assign(ctx echo.Context) error {
	var data learning.AssignPath
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignPath")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	prog, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prog)
}

type SetTaskDoneRequest struct {
	Done bool `json:"done"`
}
