package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/courseloom/course-marketplace/internal/config"
)

// cachedResponse is the envelope stored in Redis for a cacheable response.
// Header and body are kept together so a HIT replays exactly what the
// handler produced, byte for byte.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// bodyRecorder tees the response body into a buffer while streaming it to
// the client.  Recording stops at limit bytes; oversized responses are
// still served but never cached.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    written  int64
    limit    int64
    overflow bool
}

func (br *bodyRecorder) WriteHeader(code int) {
    br.status = code
    br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
    br.written += int64(len(b))
    if br.limit > 0 && br.written > br.limit {
        br.overflow = true
    } else {
        br.buf.Write(b)
    }
    return br.ResponseWriter.Write(b)
}

// cacheKey derives a stable Redis key from the request.  The catalog is
// public and identical for every caller, so the key never includes the
// user; it mixes route and query (or method, per strategy) and hashes the
// tail to keep keys short.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var tail string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        tail = c.Path()
    case "method_route":
        tail = r.Method + ":" + c.Path()
    case "method_route_query":
        tail = r.Method + ":" + c.Path() + "?" + r.URL.RawQuery
    default: // route_query
        tail = c.Path() + "?" + r.URL.RawQuery
    }
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewResponseCache returns middleware that serves public catalog responses
// from Redis.  Only configured methods are considered and only 200
// responses are stored.  A nil Redis client or a disabled config turns the
// middleware into a pass-through, so the server runs fine without Redis.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = time.Minute
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cr cachedResponse
                if json.Unmarshal(raw, &cr) == nil && cr.Status != 0 {
                    for k, vals := range cr.Header {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(cr.Status)
                    if len(cr.Body) > 0 {
                        _, _ = c.Response().Write(cr.Body)
                    }
                    return nil
                }
            }

            rec := &bodyRecorder{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          int64(cfg.MaxBodyBytes),
            }
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if rec.status == http.StatusOK && !rec.overflow {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    hdr[k] = append([]string(nil), vals...)
                }
                raw, err := json.Marshal(cachedResponse{
                    Status: rec.status,
                    Header: hdr,
                    Body:   rec.buf.Bytes(),
                })
                if err == nil {
                    // Detached context: the store must not be cancelled by
                    // the client hanging up after receiving the body.
                    _ = rdb.SetEx(context.Background(), key, raw, ttl).Err()
                }
            }
            return nil
        }
    }
}
