package middleware

// identity.go holds small helpers shared across middleware files.  The rate
// limiter and response cache both want a stable per-caller key, even on
// public routes where JWTAuth never ran, so extraction here is lenient and
// falls back to "guest".

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// callerID returns a string identifying the requester for cache and rate
// limit keys.  Authenticated requests use the numeric user ID injected by
// JWTAuth; everything else shares the "guest" bucket.
func callerID(c echo.Context) string {
    if v, ok := c.Get("user_id").(uint64); ok && v != 0 {
        return strconv.FormatUint(v, 10)
    }
    return "guest"
}
