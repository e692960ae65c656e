package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/courseloom/course-marketplace/internal/config"
    "github.com/courseloom/course-marketplace/internal/handler"
    "github.com/courseloom/course-marketplace/internal/middleware"
)

// RegisterStudent registers the purchase and enrollment surface.  All
// routes require a valid JWT; both roles are accepted because a creator
// may buy or be gifted another creator's course.  The payment, enroll and
// redeem endpoints additionally sit behind the token bucket so client
// retry loops cannot hammer the provider or the membership insert.
func RegisterStudent(e *echo.Echo, pay *handler.PaymentHandler, enr *handler.EnrollHandler, gft *handler.GiftHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
    g := e.Group("/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleStudent, middleware.RoleCreator),
    )

    limited := middleware.NewTokenBucket(rlCfg, rdb)
    g.POST("/payment-intent", pay.CreateIntent, limited)
    g.POST("/enroll", enr.Enroll, limited)
    g.GET("/enroll/check", enr.Check)
    g.GET("/my-courses", enr.MyCourses)

    g.POST("/gifts", gft.Create, limited)
    g.POST("/gifts/redeem", gft.Redeem, limited)
    g.GET("/gifts/:code/qr", gft.QR)
}
