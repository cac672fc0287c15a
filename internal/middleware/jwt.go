package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"  // errors reports missing credentials
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/rinatiamaev/salesFactoryNew/internal/utils" // token parsing shared with the login handler
)

// CallerIDHeader carries a raw caller id when header mode is enabled.
const CallerIDHeader = "X-Caller-ID"

var errNoCredentials = errors.New("missing credentials")

// callerID extracts the caller id for the request.  A Bearer token wins:
// it is verified with secret and its subject is returned.  Without a
// token, the X-Caller-ID header is used when allowHeader is set.
func callerID(c echo.Context, secret string, allowHeader bool) (string, error) {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if strings.HasPrefix(auth, "Bearer ") {
        // Remove the "Bearer " prefix to obtain the raw token string.
        raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
        return utils.ParseAccessToken(secret, raw)
    }
    if allowHeader {
        if id := strings.TrimSpace(c.Request().Header.Get(CallerIDHeader)); id != "" {
            return id, nil
        }
    }
    return "", errNoCredentials
}
