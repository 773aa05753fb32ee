// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"stride/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	RouteHandler *handler.RouteHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	routeHandler *handler.RouteHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		routeHandler: params.RouteHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	routeGroup := e.Group("/routes")
	{
		routeGroup.POST("/generate", r.routeHandler.GenerateRoutes)
		routeGroup.POST("/score", r.routeHandler.ScoreRoute)
	}
}
