package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/prediction"
)

type predictionApi struct {
	svc *prediction.Service
}

func registerPredictionAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *prediction.Service) {
	api := predictionApi{svc: svc}

	ag := g.Group("", authed...)
	ag.GET("/predict/:id", api.predict)
	ag.GET("/history", api.history)

	// admin endpoints
	ag.GET("/dashboard-stats", api.dashboardStats)
	ag.GET("/dashboard-charts", api.dashboardCharts)
}

// Handlers

func (api *predictionApi) predict(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Predict(ctx.Request().Context(), getContextIdentity(ctx), id)
	if err != nil {
		return errors.Wrap(err, "predicting")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *predictionApi) history(ctx echo.Context) error {
	query := prediction.HistoryQuery{
		Grade: ctx.QueryParam("grade"),
		Start: ctx.QueryParam("start"),
		End:   ctx.QueryParam("end"),
	}

	entries, err := api.svc.ListHistory(ctx.Request().Context(), getContextIdentity(ctx), query)
	if err != nil {
		return errors.Wrap(err, "listing history")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *predictionApi) dashboardStats(ctx echo.Context) error {
	stats, err := api.svc.DashboardStats(ctx.Request().Context(), getContextIdentity(ctx))
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *predictionApi) dashboardCharts(ctx echo.Context) error {
	charts, err := api.svc.DashboardCharts(ctx.Request().Context(), getContextIdentity(ctx))
	if err != nil {
		return errors.Wrap(err, "computing dashboard charts")
	}
	return ctx.JSON(http.StatusOK, charts)
}
