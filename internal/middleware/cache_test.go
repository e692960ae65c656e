package middleware

import (
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/courseloom/course-marketplace/internal/config"
)

func testCacheConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{"GET": true},
        TTL:          time.Minute,
        KeyStrategy:  "route_query",
        Prefix:       "catalog",
        MaxBodyBytes: 1 << 20,
    }
}

func newCacheEnv(t *testing.T) (*echo.Echo, *redis.Client, *miniredis.Miniredis) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    return echo.New(), rdb, mr
}

func TestResponseCacheMissThenHit(t *testing.T) {
    e, rdb, _ := newCacheEnv(t)

    hits := 0
    handler := func(c echo.Context) error {
        hits++
        return c.JSON(http.StatusOK, echo.Map{"call": hits})
    }
    e.GET("/v1/courses", handler, NewResponseCache(testCacheConfig(), rdb))

    first := httptest.NewRecorder()
    e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/courses", nil))
    if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
        t.Fatalf("first request: code=%d cache=%s", first.Code, first.Header().Get("X-Cache"))
    }

    second := httptest.NewRecorder()
    e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/courses", nil))
    if second.Code != http.StatusOK || second.Header().Get("X-Cache") != "HIT" {
        t.Fatalf("second request: code=%d cache=%s", second.Code, second.Header().Get("X-Cache"))
    }
    if hits != 1 {
        t.Fatalf("handler ran %d times, want 1", hits)
    }
    // The HIT replays the stored body byte for byte.
    if first.Body.String() != second.Body.String() {
        t.Fatalf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
    }
}

func TestResponseCacheKeyIncludesQuery(t *testing.T) {
    e, rdb, _ := newCacheEnv(t)

    e.GET("/v1/search/courses", func(c echo.Context) error {
        return c.String(http.StatusOK, "q="+c.QueryParam("q"))
    }, NewResponseCache(testCacheConfig(), rdb))

    for _, q := range []string{"go", "sql", "go"} {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search/courses?q="+q, nil))
        if want := fmt.Sprintf("q=%s", q); rec.Body.String() != want {
            t.Fatalf("query %q served wrong cached body: %q", q, rec.Body.String())
        }
    }
}

func TestResponseCacheSkipsErrors(t *testing.T) {
    e, rdb, _ := newCacheEnv(t)

    calls := 0
    e.GET("/v1/courses/:id", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
    }, NewResponseCache(testCacheConfig(), rdb))

    for i := 0; i < 2; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses/999", nil))
        if rec.Code != http.StatusNotFound {
            t.Fatalf("status %d, want 404", rec.Code)
        }
    }
    if calls != 2 {
        t.Fatalf("404 responses must not be cached; handler ran %d times", calls)
    }
}

func TestResponseCacheDisabledWithoutRedis(t *testing.T) {
    e := echo.New()
    calls := 0
    e.GET("/v1/courses", func(c echo.Context) error {
        calls++
        return c.String(http.StatusOK, "ok")
    }, NewResponseCache(testCacheConfig(), nil))

    for i := 0; i < 2; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/courses", nil))
        if rec.Code != http.StatusOK {
            t.Fatalf("status %d", rec.Code)
        }
    }
    if calls != 2 {
        t.Fatalf("nil client should pass through, handler ran %d times", calls)
    }
}
