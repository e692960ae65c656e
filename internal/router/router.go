// Package router wires HTTP routes to their handlers and middleware.  Route
// registration is split by audience: public catalog, authenticated student
// endpoints, creator endpoints, and the provider webhook.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/handler"
)

// RegisterRoutes registers routes that require no authentication and no
// dependencies.  Currently just the health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}
