package middleware

// identity.go resolves the caller of every protected request into a
// model.Principal and stores it in the Echo context.  Handlers read it back
// with PrincipalFrom.

import (
    "errors"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/rinatiamaev/salesFactoryNew/internal/identity"
    "github.com/rinatiamaev/salesFactoryNew/internal/model"
)

const principalKey = "principal"

// Identity returns a middleware that authenticates the request and
// resolves the caller through provider.  Any failure ends the request
// with 401 before a handler runs.
func Identity(secret string, provider identity.Provider, allowHeader bool) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, err := callerID(c, secret, allowHeader)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": err.Error()})
            }
            p, err := provider.Resolve(c.Request().Context(), id)
            if err != nil {
                if errors.Is(err, identity.ErrUnknownPrincipal) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "unknown principal"})
                }
                log.Printf("identity: resolve %q: %v", id, err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "identity lookup failed"})
            }
            c.Set(principalKey, p)
            return next(c)
        }
    }
}

// PrincipalFrom returns the principal stored by Identity.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
    p, ok := c.Get(principalKey).(model.Principal)
    return p, ok
}

// principalID names the caller for rate limit and cache keys.  It
// returns "anon" on routes that run before Identity.
func principalID(c echo.Context) string {
    if p, ok := PrincipalFrom(c); ok && p.Username != "" {
        return p.Username
    }
    return "anon"
}
