package handler

import (
    "fmt"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/rinatiamaev/salesFactoryNew/internal/middleware"
    "github.com/rinatiamaev/salesFactoryNew/internal/model"
    "github.com/rinatiamaev/salesFactoryNew/internal/service"
)

// RowHandler serves the order rows of the caller's scope.
type RowHandler struct {
    Orders *service.Orders
}

// NewRowHandler panics on a nil service.
func NewRowHandler(o *service.Orders) *RowHandler {
    if o == nil {
        panic("nil service passed to NewRowHandler")
    }
    return &RowHandler{Orders: o}
}

// List handles GET /rows.
func (h *RowHandler) List(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return unauthorized(c)
    }
    rows, err := h.Orders.ListRows(c.Request().Context(), p)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, rows)
}

// Create handles POST /rows and answers 201 with the stored row.
func (h *RowHandler) Create(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return unauthorized(c)
    }
    in, err := bindRow(c)
    if err != nil {
        return writeError(c, err)
    }
    row, err := h.Orders.CreateRow(c.Request().Context(), p, in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, row)
}

// Update handles PUT /rows/:id and returns the full updated row.
func (h *RowHandler) Update(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, err := rowID(c)
    if err != nil {
        return badRequest(c, "invalid id")
    }
    // A missing or foreign row answers 404 or 403 whatever the body holds.
    if err := h.Orders.AuthorizeRow(c.Request().Context(), p, id); err != nil {
        return writeError(c, err)
    }
    in, err := bindRow(c)
    if err != nil {
        return writeError(c, err)
    }
    row, err := h.Orders.UpdateRow(c.Request().Context(), p, id, in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, row)
}

// Delete handles DELETE /rows/:id.
func (h *RowHandler) Delete(c echo.Context) error {
    p, ok := middleware.PrincipalFrom(c)
    if !ok {
        return unauthorized(c)
    }
    id, err := rowID(c)
    if err != nil {
        return badRequest(c, "invalid id")
    }
    if err := h.Orders.DeleteRow(c.Request().Context(), p, id); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// bindRow decodes the request body; a malformed body and a missing name
// or price are both validation errors.
func bindRow(c echo.Context) (model.RowInput, error) {
    var body model.RowPayload
    if err := c.Bind(&body); err != nil {
        return model.RowInput{}, fmt.Errorf("%w: invalid body", model.ErrValidation)
    }
    return body.Input()
}

func rowID(c echo.Context) (int64, error) {
    return strconv.ParseInt(c.Param("id"), 10, 64)
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": KindUnauthorized, "message": "unauthorized"})
}
