package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health answers load balancer and uptime probes.  It deliberately touches
// no dependency: a database or broker outage should surface through the
// affected endpoints, not take the whole instance out of rotation.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
