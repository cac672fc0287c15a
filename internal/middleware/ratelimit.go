package middleware

import (
    "errors"
    "math"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/rinatiamaev/salesFactoryNew/internal/config"
)

// KeyFunc names the caller a request is charged to.
type KeyFunc func(c echo.Context) string

// CallerKey charges authenticated requests to the principal and the rest
// to the client IP.  It needs Identity to run first.
func CallerKey(c echo.Context) string {
    if p, ok := PrincipalFrom(c); ok && p.Username != "" {
        return "principal:" + p.Username
    }
    return "ip:" + c.RealIP()
}

var errUnexpectedReply = errors.New("unexpected limiter reply")

// gcraScript stores one theoretical arrival time per key, in unix ms.
// ARGV: now_ms, every_ms, burst.  Returns {allowed, remaining, retry_ms}.
var gcraScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local every = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])

local tat = tonumber(redis.call('GET', KEYS[1]) or now)
if tat < now then
    tat = now
end
local next_tat = tat + every
local allow_at = next_tat - every * burst
if allow_at > now then
    return {0, 0, allow_at - now}
end
redis.call('SET', KEYS[1], string.format('%d', next_tat), 'PX', string.format('%d', next_tat - now))
return {1, math.floor((now - allow_at) / every), 0}
`)

// NewRateLimiter charges each request to key(c) against the read budget
// for GET and HEAD and the write budget otherwise.  State lives in Redis
// so every replica shares it.  A nil rdb or a disabled config yields a
// pass-through, and a Redis error lets the request through.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, key KeyFunc) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if key == nil {
        key = CallerKey
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            class, budget := "write", cfg.Write
            if m := c.Request().Method; m == http.MethodGet || m == http.MethodHead {
                class, budget = "read", cfg.Read
            }
            bucket := cfg.Prefix + ":" + class + ":" + key(c)

            allowed, remaining, retry, err := take(c, rdb, bucket, budget)
            if err != nil {
                c.Logger().Warnf("ratelimit: %s: %v", bucket, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(budget.Burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if !allowed {
                secs := int(math.Ceil(retry.Seconds()))
                h.Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func take(c echo.Context, rdb *redis.Client, bucket string, b config.Budget) (bool, int64, time.Duration, error) {
    now := time.Now().UnixMilli()
    res, err := gcraScript.Run(c.Request().Context(), rdb, []string{bucket}, now, b.Every.Milliseconds(), b.Burst).Int64Slice()
    if err != nil {
        return false, 0, 0, err
    }
    if len(res) != 3 {
        return false, 0, 0, errUnexpectedReply
    }
    return res[0] == 1, res[1], time.Duration(res[2]) * time.Millisecond, nil
}
