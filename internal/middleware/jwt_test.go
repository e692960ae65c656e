package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/courseloom/course-marketplace/internal/utils"
)

const testSecret = "unit-test-secret"

func protectedEcho(roles ...string) *echo.Echo {
    e := echo.New()
    mws := []echo.MiddlewareFunc{JWTAuth(testSecret)}
    if len(roles) > 0 {
        mws = append(mws, RequireRole(roles...))
    }
    e.GET("/v1/me", func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{
            "user_id": c.Get("user_id"),
            "role":    c.Get("role"),
        })
    }, mws...)
    return e
}

func bearerFor(t *testing.T, userID uint64, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(testSecret, userID, role, 5)
    if err != nil {
        t.Fatalf("issue token: %v", err)
    }
    return "Bearer " + tok.Token
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
    e := protectedEcho()
    req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    req.Header.Set("Authorization", bearerFor(t, 7, RoleStudent))
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK {
        t.Fatalf("status %d, want 200; body=%s", rec.Code, rec.Body.String())
    }
}

func TestJWTAuthRejectsMissingAndGarbageTokens(t *testing.T) {
    e := protectedEcho()

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("missing token: status %d, want 401", rec.Code)
    }

    req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    req.Header.Set("Authorization", "Bearer not.a.jwt")
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("garbage token: status %d, want 401", rec.Code)
    }
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
    e := protectedEcho()
    tok, err := utils.NewAccessToken("some-other-secret", 7, RoleStudent, 5)
    if err != nil {
        t.Fatalf("issue token: %v", err)
    }
    req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    req.Header.Set("Authorization", "Bearer "+tok.Token)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("wrong secret: status %d, want 401", rec.Code)
    }
}

func TestRequireRoleEnforcesRole(t *testing.T) {
    e := protectedEcho(RoleCreator)

    req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    req.Header.Set("Authorization", bearerFor(t, 7, RoleStudent))
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusForbidden {
        t.Fatalf("student on creator route: status %d, want 403", rec.Code)
    }

    req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    req.Header.Set("Authorization", bearerFor(t, 7, RoleCreator))
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK {
        t.Fatalf("creator on creator route: status %d, want 200", rec.Code)
    }
}

func TestOptionalJWTLeavesGuestsAnonymous(t *testing.T) {
    e := echo.New()
    e.GET("/v1/courses/1", func(c echo.Context) error {
        _, authed := c.Get("user_id").(uint64)
        return c.JSON(http.StatusOK, echo.Map{"authed": authed})
    }, OptionalJWT(testSecret))

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses/1", nil))
    if rec.Code != http.StatusOK || rec.Body.String() != "{\"authed\":false}\n" {
        t.Fatalf("guest request: code=%d body=%q", rec.Code, rec.Body.String())
    }

    req := httptest.NewRequest(http.MethodGet, "/v1/courses/1", nil)
    req.Header.Set("Authorization", bearerFor(t, 7, RoleStudent))
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    if rec.Code != http.StatusOK || rec.Body.String() != "{\"authed\":true}\n" {
        t.Fatalf("authed request: code=%d body=%q", rec.Code, rec.Body.String())
    }
}
