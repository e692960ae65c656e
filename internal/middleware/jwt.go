package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // numeric parsing for the subject claim
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the authenticated identity into the request context.  The
// secret must match the one access tokens were signed with.  On success the
// context carries "user_id" (uint64) and "role" (string), so handlers never
// re-parse the token or re-assert claim types themselves.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // The Authorization header must carry a bearer token; anything
            // else is treated as an unauthenticated request.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with the HMAC family pinned.  Accepting whatever alg the
            // token claims would let a client downgrade to "none", so any
            // other signing method is rejected outright.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // Tokens are issued with the user ID as a decimal string in the
            // subject claim.  Normalise it to uint64 once here so every
            // handler downstream gets a ready-to-use identifier.
            sub, _ := claims["sub"].(string)
            uid, err := strconv.ParseUint(sub, 10, 64)
            if err != nil || uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
            }
            role, _ := claims["role"].(string)

            c.Set("user_id", uid)
            c.Set("role", role)
            return next(c)
        }
    }
}

// OptionalJWT is the lenient sibling of JWTAuth for public routes whose
// response is richer for authenticated callers.  A valid token injects the
// identity exactly like JWTAuth; a missing or invalid one leaves the
// request anonymous instead of rejecting it.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if strings.HasPrefix(auth, "Bearer ") {
                raw := strings.TrimPrefix(auth, "Bearer ")
                tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                        return nil, echo.ErrUnauthorized
                    }
                    return []byte(secret), nil
                })
                if err == nil && tok.Valid {
                    if claims, ok := tok.Claims.(jwt.MapClaims); ok {
                        sub, _ := claims["sub"].(string)
                        if uid, err := strconv.ParseUint(sub, 10, 64); err == nil && uid != 0 {
                            c.Set("user_id", uid)
                            if role, ok := claims["role"].(string); ok {
                                c.Set("role", role)
                            }
                        }
                    }
                }
            }
            return next(c)
        }
    }
}
