package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// Role values carried in the JWT "role" claim.  STUDENT accounts enroll in
// and consume courses; CREATOR accounts publish them and read analytics.
const (
    RoleStudent = "STUDENT"
    RoleCreator = "CREATOR"
)

// RequireRole returns a middleware that rejects requests whose
// authenticated role claim is not in the allowed set.  It must run after
// JWTAuth, which stores the role in the context under "role"; a missing or
// mistyped value is treated the same as a disallowed role and yields 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
