package handler // handler maps service results onto HTTP responses

import (
    "errors"   // errors.Is matches the sentinel errors of each layer
    "log"      // log records unexpected failures
    "net/http" // http provides status code constants

    "github.com/labstack/echo/v4" // echo is the web framework used for handlers

    "github.com/rinatiamaev/salesFactoryNew/internal/access"     // forbidden decisions
    "github.com/rinatiamaev/salesFactoryNew/internal/identity"   // authentication failures
    "github.com/rinatiamaev/salesFactoryNew/internal/model"      // payload validation
    "github.com/rinatiamaev/salesFactoryNew/internal/repository" // missing records
)

// Error kinds reported in the "error" field of every failure body.
const (
    KindUnauthorized = "unauthorized"
    KindNotFound     = "not_found"
    KindForbidden    = "forbidden"
    KindValidation   = "validation"
    KindInternal     = "internal"
)

// writeError is the single place errors become HTTP responses.  Internal
// errors are logged and their text is not sent to the client.
func writeError(c echo.Context, err error) error {
    status, kind := classify(err)
    msg := err.Error()
    if status == http.StatusInternalServerError {
        log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
        msg = "internal error"
    }
    return c.JSON(status, echo.Map{"error": kind, "message": msg})
}

func classify(err error) (int, string) {
    switch {
    case errors.Is(err, identity.ErrUnknownPrincipal), errors.Is(err, identity.ErrInvalidCredentials):
        return http.StatusUnauthorized, KindUnauthorized
    case errors.Is(err, repository.ErrRowNotFound):
        return http.StatusNotFound, KindNotFound
    case errors.Is(err, access.ErrForbidden):
        return http.StatusForbidden, KindForbidden
    case errors.Is(err, model.ErrValidation):
        return http.StatusBadRequest, KindValidation
    }
    return http.StatusInternalServerError, KindInternal
}

// badRequest reports a body or path parameter that could not be parsed.
func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": KindValidation, "message": msg})
}
