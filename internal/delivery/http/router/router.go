// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"etwin/internal/delivery/http/middleware"
	"etwin/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Every other route runs with the AuthContext of the caller, guests included
	api := e.Group("", r.authMiddleware.Authenticate)

	authGroup := api.Group("/auth")
	{
		authGroup.GET("/self", r.authHandler.Self)
		authGroup.POST("/email", r.authHandler.Email)
		authGroup.POST("/register/verified-email", r.authHandler.RegisterWithVerifiedEmail)
		authGroup.POST("/register/username", r.authHandler.RegisterWithUsername)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/hammerfest", r.authHandler.Hammerfest)
		authGroup.POST("/dinoparc", r.authHandler.Dinoparc)
		authGroup.POST("/twinoid", r.authHandler.Twinoid)
		authGroup.DELETE("/session", r.authHandler.Logout)
	}

	usersGroup := api.Group("/users")
	{
		usersGroup.GET("/:id", r.userHandler.GetUser)
		usersGroup.PUT("/:id/links/hammerfest", r.userHandler.LinkHammerfest)
		usersGroup.PUT("/:id/links/dinoparc", r.userHandler.LinkDinoparc)
		usersGroup.PUT("/:id/links/twinoid", r.userHandler.LinkTwinoid)
		usersGroup.DELETE("/:id/links/:service", r.userHandler.Unlink)
	}
}
