package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinatiamaev/salesFactoryNew/internal/config"
	"github.com/rinatiamaev/salesFactoryNew/internal/handler"
	"github.com/rinatiamaev/salesFactoryNew/internal/identity"
	"github.com/rinatiamaev/salesFactoryNew/internal/middleware"
	"github.com/rinatiamaev/salesFactoryNew/internal/repository"
	"github.com/rinatiamaev/salesFactoryNew/internal/service"
)

func newApp(t *testing.T) *echo.Echo {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	provider, err := identity.NewStaticProvider(identity.DefaultAccounts(), 4)
	require.NoError(t, err)
	orders := service.NewOrders(repository.NewMemoryRowRepo(), repository.NewMemoryTableRepo(), nil, nil)

	e := echo.New()
	UseCommon(e, []string{"http://localhost:3000"})
	ch := Chain{
		Identity: middleware.Identity("router-secret", provider, true),
		Cache: middleware.NewRedisCache(config.CacheConfig{
			Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache",
		}, rdb),
	}
	RegisterRoutes(e, handler.Health(nil))
	RegisterAuth(e, handler.NewAuthHandler(provider, "router-secret", 5), ch)
	RegisterOrders(e, handler.NewRowHandler(orders), handler.NewTableHandler(orders), ch)
	return e
}

func serve(e *echo.Echo, method, path, caller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(middleware.CallerIDHeader, caller)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutesUnderBothPrefixes(t *testing.T) {
	e := newApp(t)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/login", "", `{"username":"admin","password":"admin"}`).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/v1/auth/login", "", `{"username":"admin","password":"admin"}`).Code)

	for _, p := range Prefixes {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, p+"/me", "admin", "").Code, p)
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, p+"/rows", "admin", "").Code, p)
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, p+"/tables", "admin", "").Code, p)
		assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, p+"/rows", "", "").Code, p)
		assert.Equal(t, http.StatusNotFound, serve(e, http.MethodDelete, p+"/rows/42", "admin", "").Code, p)
	}
}

func TestReadAfterWriteThroughCache(t *testing.T) {
	e := newApp(t)

	rec := serve(e, http.MethodGet, "/rows", "client1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "HIT", serve(e, http.MethodGet, "/rows", "client1", "").Header().Get("X-Cache"))

	rec = serve(e, http.MethodPost, "/v1/rows", "client1", `{"name":"Latte","price":3.5,"table_number":9}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodGet, "/rows", "client1", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"table_number":1`)
}

func TestCORSAndRequestID(t *testing.T) {
	e := newApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/rows", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = serve(e, http.MethodGet, "/healthz", "", "")
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestChainSkipsNil(t *testing.T) {
	assert.Empty(t, Chain{}.protected())
	assert.Len(t, Chain{Identity: middleware.Identity("s", nil, false)}.protected(), 1)
}
