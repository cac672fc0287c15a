package handler // declare the package name; contains HTTP handlers

import (
    "context"  // context bounds the dependency checks
    "net/http" // net/http provides status codes and response helpers
    "time"     // time sets the check timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is any dependency that can report liveness, such as *sql.DB or a
// Redis status check.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Health returns the health-check endpoint used by load balancers and
// monitoring systems.  It answers 200 with {"status":"ok"} when every
// named dependency responds within two seconds and 503 otherwise, listing
// each dependency's state.  With no dependencies it always answers 200.
func Health(deps map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()

        status := http.StatusOK
        checks := make(map[string]string, len(deps))
        for name, p := range deps {
            if err := p.PingContext(ctx); err != nil {
                checks[name] = err.Error()
                status = http.StatusServiceUnavailable
                continue
            }
            checks[name] = "ok"
        }
        state := "ok"
        if status != http.StatusOK {
            state = "degraded"
        }
        return c.JSON(status, echo.Map{"status": state, "checks": checks})
    }
}
