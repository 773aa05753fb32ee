package handler

import (
	"log/slog"
	"net/http"

	"stride/internal/delivery/http/response"
	"stride/internal/domain/entity"
	"stride/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouteHandlerParams holds dependencies for RouteHandler, injected by Fx.
type RouteHandlerParams struct {
	fx.In

	RouteUC usecase.RouteUsecase
	Logger  *slog.Logger
}

// RouteHandler holds dependencies for route generation and scoring handlers
type RouteHandler struct {
	routeUC usecase.RouteUsecase
	logger  *slog.Logger
}

// NewRouteHandler is the constructor for RouteHandler
func NewRouteHandler(params RouteHandlerParams) *RouteHandler {
	return &RouteHandler{
		routeUC: params.RouteUC,
		logger:  params.Logger,
	}
}

// GenerateRoutesRequest represents the request body for route generation
type GenerateRoutesRequest struct {
	Lat                 *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lng                 *float64 `json:"lng,omitempty" validate:"omitempty,min=-180,max=180"`
	Address             string   `json:"address,omitempty"`
	DistanceMiles       float64  `json:"distance_miles" validate:"required,gt=0"`
	Topology            string   `json:"topology" validate:"required,oneof=loop out_and_back point_to_point"`
	Count               int      `json:"count" validate:"required,min=1,max=10"`
	SimilarityThreshold float64  `json:"similarity_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	DistanceTolerance   float64  `json:"distance_tolerance,omitempty" validate:"omitempty,gt=0,lt=1"`
}

// ScoreRouteRequest represents the request body for standalone scoring
type ScoreRouteRequest struct {
	Points          []PointDTO `json:"points" validate:"required,min=1,dive"`
	CrimeWindowDays int        `json:"crime_window_days,omitempty" validate:"omitempty,min=1,max=90"`
	NewsWindowDays  int        `json:"news_window_days,omitempty" validate:"omitempty,min=1,max=90"`
}

// PointDTO is a coordinate pair in request bodies
type PointDTO struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// GenerateRoutes handles POST /routes/generate
func (h *RouteHandler) GenerateRoutes(c echo.Context) error {
	var req GenerateRoutesRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid generation input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.GenerateRoutesInput{
		Address:             req.Address,
		TargetDistanceMiles: req.DistanceMiles,
		Topology:            entity.Topology(req.Topology),
		Count:               req.Count,
		SimilarityThreshold: req.SimilarityThreshold,
		DistanceTolerance:   req.DistanceTolerance,
	}
	if req.Lat != nil && req.Lng != nil {
		input.Start = &entity.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
	}

	routes, err := h.routeUC.GenerateRoutes(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, routes, "")
}

// ScoreRoute handles POST /routes/score
func (h *RouteHandler) ScoreRoute(c echo.Context) error {
	var req ScoreRouteRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid scoring input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	points := make([]entity.GeoPoint, 0, len(req.Points))
	for _, point := range req.Points {
		points = append(points, entity.GeoPoint{Lat: point.Lat, Lng: point.Lng})
	}

	details, err := h.routeUC.ScoreRoute(c.Request().Context(), &usecase.ScoreRouteInput{
		Points:          points,
		CrimeWindowDays: req.CrimeWindowDays,
		NewsWindowDays:  req.NewsWindowDays,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, details, "")
}
