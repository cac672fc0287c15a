package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/rinatiamaev/salesFactoryNew/internal/middleware"
    "github.com/rinatiamaev/salesFactoryNew/internal/model"
    "github.com/rinatiamaev/salesFactoryNew/internal/service"
)

// TableHandler serves the table layout registry.
type TableHandler struct {
    Orders *service.Orders
}

// NewTableHandler panics on a nil service.
func NewTableHandler(o *service.Orders) *TableHandler {
    if o == nil {
        panic("nil service passed to NewTableHandler")
    }
    return &TableHandler{Orders: o}
}

// List handles GET /tables.
func (h *TableHandler) List(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return unauthorized(c)
    }
    tables, err := h.Orders.ListTables(c.Request().Context(), p)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, tables)
}

// Create handles POST /tables.  The caller's role is checked before the
// body is even parsed.
func (h *TableHandler) Create(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return unauthorized(c)
    }
    if err := h.Orders.AuthorizeCreateTable(p); err != nil {
        return writeError(c, err)
    }
    var in model.TableInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "invalid body")
    }
    t, err := h.Orders.CreateTable(c.Request().Context(), p, in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, t)
}
