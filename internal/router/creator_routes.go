package router

import (
    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/handler"
    "github.com/courseloom/course-marketplace/internal/middleware"
)

// RegisterCreator registers the authoring endpoints under /v1/creator.
// All routes require the CREATOR role; per-course ownership is enforced in
// the repository layer on every mutation.
func RegisterCreator(e *echo.Echo, h *handler.CreatorHandler, jwtSecret string) {
    g := e.Group("/v1/creator",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleCreator),
    )
    g.POST("/courses", h.CreateCourse)
    g.POST("/courses/:id/sections", h.CreateSection)
    g.POST("/sections/:id/lessons", h.CreateLesson)
    g.GET("/analytics", h.Analytics)
}
