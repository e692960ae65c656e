package router

import (
    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/handler"
    "github.com/courseloom/course-marketplace/internal/middleware"
)

// RegisterAuth registers authentication routes.  Register, login and
// refresh live under /v1/auth without middleware; /v1/me and /v1/auth/logout
// require a valid access token of either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)

    auth := e.Group("/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleStudent, middleware.RoleCreator),
    )
    auth.GET("/me", a.Me)
    auth.POST("/auth/logout", a.Logout)
}
