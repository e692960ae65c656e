package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/courseloom/course-marketplace/internal/config"
    "github.com/courseloom/course-marketplace/internal/handler"
    "github.com/courseloom/course-marketplace/internal/middleware"
)

// RegisterPublic registers the unauthenticated catalog.  List and search
// responses are identical for every caller and sit behind the Redis
// response cache; the course detail route is not cached because its body
// depends on the caller's enrollment (video URLs), so it runs OptionalJWT
// instead.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
    cached := middleware.NewResponseCache(cacheCfg, rdb)
    e.GET("/v1/courses", h.List, cached)
    e.GET("/v1/search/courses", h.Search, cached)
    e.GET("/v1/courses/:id", h.Get, middleware.OptionalJWT(jwtSecret))
}
