package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinatiamaev/salesFactoryNew/internal/access"
	"github.com/rinatiamaev/salesFactoryNew/internal/identity"
	"github.com/rinatiamaev/salesFactoryNew/internal/middleware"
	"github.com/rinatiamaev/salesFactoryNew/internal/model"
	"github.com/rinatiamaev/salesFactoryNew/internal/repository"
	"github.com/rinatiamaev/salesFactoryNew/internal/service"
	"github.com/rinatiamaev/salesFactoryNew/internal/utils"
)

const secret = "handler-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	provider, err := identity.NewStaticProvider(identity.DefaultAccounts(), 4)
	require.NoError(t, err)

	orders := service.NewOrders(repository.NewMemoryRowRepo(), repository.NewMemoryTableRepo(), nil, nil)
	rows := NewRowHandler(orders)
	tables := NewTableHandler(orders)
	auth := NewAuthHandler(provider, secret, 5)

	e := echo.New()
	id := middleware.Identity(secret, provider, true)
	e.POST("/login", auth.Login)
	e.GET("/me", auth.Me, id)
	e.GET("/rows", rows.List, id)
	e.POST("/rows", rows.Create, id)
	e.PUT("/rows/:id", rows.Update, id)
	e.DELETE("/rows/:id", rows.Delete, id)
	e.GET("/tables", tables.List, id)
	e.POST("/tables", tables.Create, id)
	return e
}

func call(e *echo.Echo, method, path, caller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(middleware.CallerIDHeader, caller)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLogin(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodPost, "/login", "", `{"username":"client1","password":"123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "client1", got["username"])
	assert.Equal(t, "client", got["role"])
	assert.EqualValues(t, 1, got["table_number"])

	tok := got["access"].(map[string]any)
	sub, err := utils.ParseAccessToken(secret, tok["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "client1", sub)

	rec = call(e, http.MethodPost, "/login", "", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, KindUnauthorized, decode[map[string]any](t, rec)["error"])

	rec = call(e, http.MethodPost, "/login", "", `{"username":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/login", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodGet, "/me", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, "owner", got["role"])
	assert.Nil(t, got["table_number"])

	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/me", "ghost", "").Code)
}

func TestRowsLifecycle(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodPost, "/rows", "client1", `{"name":"Latte","price":3.5,"table_number":9}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.Row](t, rec)
	assert.Equal(t, int64(1), created.TableNumber)

	rec = call(e, http.MethodPost, "/rows", "admin", `{"name":"Cake","price":4,"table_number":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	foreign := decode[model.Row](t, rec)

	rec = call(e, http.MethodGet, "/rows", "client1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Row](t, rec), 1)

	rec = call(e, http.MethodGet, "/rows", "admin", "")
	assert.Len(t, decode[[]model.Row](t, rec), 2)

	rec = call(e, http.MethodPut, fmt.Sprintf("/rows/%d", created.ID), "client1", `{"name":"Flat white","price":4,"note":"hot"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Row](t, rec)
	assert.Equal(t, "Flat white", updated.Name)
	require.NotNil(t, updated.Note)
	assert.Equal(t, "hot", *updated.Note)

	rec = call(e, http.MethodDelete, fmt.Sprintf("/rows/%d", foreign.ID), "client1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, KindForbidden, decode[map[string]any](t, rec)["error"])

	rec = call(e, http.MethodDelete, "/rows/9999", "client1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodDelete, fmt.Sprintf("/rows/%d", created.ID), "client1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["success"])

	rec = call(e, http.MethodDelete, fmt.Sprintf("/rows/%d", created.ID), "client1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRowsBadInput(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodPost, "/rows", "admin", `{"name":"","price":1,"table_number":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, KindValidation, decode[map[string]any](t, rec)["error"])

	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/rows", "admin", `{"price":"free"}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/rows", "admin", `{broken`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPut, "/rows/abc", "admin", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodDelete, "/rows/abc", "admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/rows", "", "").Code)
}

func TestRowsRequiredFields(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodPost, "/rows", "admin", `{"name":"Latte"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["message"], "price is required")

	rec = call(e, http.MethodPost, "/rows", "admin", `{"name":"Latte","price":3.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["message"], "table_number")

	rec = call(e, http.MethodPost, "/rows", "client1", `{"name":"Latte"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/rows", "client1", `{"name":"Latte","price":3.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[model.Row](t, rec)
	assert.Equal(t, int64(1), created.TableNumber)

	rec = call(e, http.MethodPut, fmt.Sprintf("/rows/%d", created.ID), "admin", `{"name":"Latte","price":3.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodGet, "/rows", "admin", "")
	assert.Len(t, decode[[]model.Row](t, rec), 1)
}

func TestUpdateRowChecksRowBeforeBody(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodPost, "/rows", "admin", `{"name":"Cake","price":4,"table_number":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	foreign := decode[model.Row](t, rec)

	for _, body := range []string{`{"name":"Latte","price":"abc"}`, `{broken`, `{}`} {
		rec = call(e, http.MethodPut, "/rows/9999", "client1", body)
		assert.Equal(t, http.StatusNotFound, rec.Code, body)
		assert.Equal(t, KindNotFound, decode[map[string]any](t, rec)["error"])

		rec = call(e, http.MethodPut, fmt.Sprintf("/rows/%d", foreign.ID), "client1", body)
		assert.Equal(t, http.StatusForbidden, rec.Code, body)
		assert.Equal(t, KindForbidden, decode[map[string]any](t, rec)["error"])

		rec = call(e, http.MethodPut, fmt.Sprintf("/rows/%d", foreign.ID), "admin", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestTables(t *testing.T) {
	e := newServer(t)

	for _, body := range []string{`{"row_index":0,"col_index":1}`, `{"row_index":-1}`, `{broken`} {
		rec := call(e, http.MethodPost, "/tables", "client1", body)
		assert.Equal(t, http.StatusForbidden, rec.Code, body)
	}

	rec := call(e, http.MethodPost, "/tables", "admin", `{"row_index":-1,"col_index":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/tables", "admin", `{"row_index":2,"col_index":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	tbl := decode[model.Table](t, rec)
	assert.Equal(t, model.TableFree, tbl.Status)
	assert.Equal(t, 2, tbl.RowIndex)

	rec = call(e, http.MethodGet, "/tables", "admin", "")
	assert.Len(t, decode[[]model.Table](t, rec), 1)

	rec = call(e, http.MethodGet, "/tables", "client1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Table](t, rec))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{identity.ErrUnknownPrincipal, http.StatusUnauthorized, KindUnauthorized},
		{identity.ErrInvalidCredentials, http.StatusUnauthorized, KindUnauthorized},
		{fmt.Errorf("row 3: %w", repository.ErrRowNotFound), http.StatusNotFound, KindNotFound},
		{fmt.Errorf("look up row 3: %w", errors.New("driver: bad connection")), http.StatusInternalServerError, KindInternal},
		{fmt.Errorf("row 3: %w", access.ErrForbidden), http.StatusForbidden, KindForbidden},
		{model.ErrValidation, http.StatusBadRequest, KindValidation},
		{errors.New("boom"), http.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		status, kind := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.kind, kind, tt.err.Error())
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return writeError(c, errors.New("dsn password=hunter2")) })
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/ok", Health(map[string]Pinger{"mysql": PingFunc(func(context.Context) error { return nil })}))
	e.GET("/bad", Health(map[string]Pinger{"redis": PingFunc(func(context.Context) error { return errors.New("down") })}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"mysql":"ok"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"down"}}`, rec.Body.String())
}

func TestConstructorsRejectNilService(t *testing.T) {
	assert.Panics(t, func() { NewRowHandler(nil) })
	assert.Panics(t, func() { NewTableHandler(nil) })

	called := false
	ping := PingFunc(func(context.Context) error { called = true; return nil })
	assert.NoError(t, ping.PingContext(context.Background()))
	assert.True(t, called)
}
