package main // Entry point package

import (
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/stripe/stripe-go/v76"

    "github.com/courseloom/course-marketplace/internal/config"
    "github.com/courseloom/course-marketplace/internal/database"
    "github.com/courseloom/course-marketplace/internal/enroll"
    "github.com/courseloom/course-marketplace/internal/gift"
    "github.com/courseloom/course-marketplace/internal/handler"
    "github.com/courseloom/course-marketplace/internal/payment"
    "github.com/courseloom/course-marketplace/internal/queue"
    "github.com/courseloom/course-marketplace/internal/repository"
    "github.com/courseloom/course-marketplace/internal/router"
    qp "github.com/courseloom/course-marketplace/internal/service"
)

func main() {
    // .env is a development convenience; in production configuration comes
    // from real environment variables and the file simply is not there.
    if err := godotenv.Load(); err != nil {
        log.Printf("no .env file loaded: %v", err)
    }

    cfg := config.Load()

    db, err := database.Open(cfg)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Stripe's client reads the key from this package-level variable.
    stripe.Key = cfg.StripeSecretKey

    // Optional Redis: catalog cache and rate limiter degrade to
    // pass-through when nil.
    rdb := config.NewRedisClient()
    cacheCfg := config.LoadCacheConfig()
    rlCfg := config.LoadRateLimitConfig()

    // Repositories.
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    courses := repository.NewCourseRepo(db)
    enrollments := repository.NewEnrollmentRepo(db)
    payments := repository.NewPaymentRepo(db)
    gifts := repository.NewGiftRepo(db)

    // Services.  The SQL store doubles as the initiator's existence
    // lookups; the queue publisher feeds both completion and failure
    // events.
    events := qp.Publisher{}
    store := enroll.NewSQLStore(users, courses, enrollments)
    enrollSvc := enroll.New(store, events)
    initiator := payment.NewInitiator(payments, store, payment.StripeProvider{},
        time.Duration(cfg.ProviderTimeoutSec)*time.Second)
    reconciler := payment.NewReconciler(payments, enrollSvc, events)
    giftSvc := gift.New(gifts, enrollSvc)

    // Queue consumer runs for the life of the process and reconnects on
    // broker failures by itself.
    go func() {
        if err := queue.StartEnrollmentConsumer(); err != nil {
            log.Printf("enrollment consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())

    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterPublic(e, handler.NewCatalogHandler(courses, enrollments), cfg.JWTSecret, cacheCfg, rdb)
    router.RegisterStudent(e,
        handler.NewPaymentHandler(initiator),
        handler.NewEnrollHandler(enrollSvc, enrollments),
        handler.NewGiftHandler(giftSvc, gifts, courses),
        cfg.JWTSecret, rlCfg, rdb)
    router.RegisterCreator(e, handler.NewCreatorHandler(courses, payments, enrollments), cfg.JWTSecret)
    router.RegisterWebhooks(e, handler.NewWebhookHandler(reconciler, cfg.StripeWebhookSecret))

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
