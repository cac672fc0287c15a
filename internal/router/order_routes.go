package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rinatiamaev/salesFactoryNew/internal/handler"
)

// RegisterOrders registers the row and table endpoints under every prefix.
// Each route runs the protected chain, so a request without a resolvable
// principal never reaches a handler.
func RegisterOrders(e *echo.Echo, rows *handler.RowHandler, tables *handler.TableHandler, ch Chain) {
	mw := ch.protected()
	for _, p := range Prefixes {
		// ---- Rows ----
		e.GET(p+"/rows", rows.List, mw...)
		e.POST(p+"/rows", rows.Create, mw...)
		e.PUT(p+"/rows/:id", rows.Update, mw...)
		e.DELETE(p+"/rows/:id", rows.Delete, mw...)

		// ---- Tables ----
		e.GET(p+"/tables", tables.List, mw...)
		e.POST(p+"/tables", tables.Create, mw...)
	}
}
