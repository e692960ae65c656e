package handler

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"
)

var errNoIdentity = errors.New("no authenticated user in context")

// currentUser returns the authenticated user ID injected by the JWT
// middleware.  Handlers behind JWTAuth can rely on it; a zero value means
// the route was misregistered without the middleware.
func currentUser(c echo.Context) (uint64, error) {
    uid, ok := c.Get("user_id").(uint64)
    if !ok || uid == 0 {
        return 0, errNoIdentity
    }
    return uid, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}
