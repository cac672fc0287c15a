package router // package router defines how HTTP routes are registered for the API

import (
	"net/http" // http provides method constants for CORS

	"github.com/google/uuid"                  // uuid generates request ids
	"github.com/labstack/echo/v4"             // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware

	"github.com/rinatiamaev/salesFactoryNew/internal/handler" // import the handlers that implement business logic
)

// Prefixes every API route is served under: the bare paths the frontend
// already calls, and the versioned ones.
var Prefixes = []string{"", "/v1"}

// Chain holds the middleware applied per route.  Nil entries are skipped.
type Chain struct {
	Identity  echo.MiddlewareFunc // resolves the principal; required on protected routes
	RateLimit echo.MiddlewareFunc // read and write budgets, keyed by principal once Identity ran
	Cache     echo.MiddlewareFunc // GET response cache with write invalidation
}

// public is the chain for routes that run without a principal.
func (ch Chain) public() []echo.MiddlewareFunc {
	return compact(ch.RateLimit)
}

// protected is the chain for routes that need a principal.  Identity must
// run first so the limiter and the cache can key by principal.
func (ch Chain) protected() []echo.MiddlewareFunc {
	return compact(ch.Identity, ch.RateLimit, ch.Cache)
}

func compact(ms ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// UseCommon installs the global middleware: panic recovery, request ids,
// access logging and CORS for the given browser origins.
func UseCommon(e *echo.Echo, corsOrigins []string) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} ${id} ${method} ${uri} ${status} ${latency_human}\n",
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Caller-ID"},
		AllowCredentials: true,
	}))
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers the login endpoints and the principal lookup.
// Login lives at /login for the existing frontend and at /v1/auth/login.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, ch Chain) {
	e.POST("/login", a.Login, ch.public()...)
	e.POST("/v1/auth/login", a.Login, ch.public()...)
	for _, p := range Prefixes {
		e.GET(p+"/me", a.Me, ch.protected()...)
	}
}
