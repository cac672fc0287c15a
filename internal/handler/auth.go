package handler

import (
	"context"  // provides context with cancellation for identity lookups
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for identity lookups

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/rinatiamaev/salesFactoryNew/internal/identity"   // credential checks
	"github.com/rinatiamaev/salesFactoryNew/internal/middleware" // resolved principal
	"github.com/rinatiamaev/salesFactoryNew/internal/model"      // principal shape
	"github.com/rinatiamaev/salesFactoryNew/internal/utils"      // token issuing
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Provider     identity.Provider
	JWTSecret    string
	AccessTTLMin int
}

func NewAuthHandler(p identity.Provider, secret string, ttlMin int) *AuthHandler {
	return &AuthHandler{Provider: p, JWTSecret: secret, AccessTTLMin: ttlMin}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type principalResp struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	TableNumber *int64 `json:"table_number"`
}

type loginResp struct {
	principalResp
	Access tokenPart `json:"access"`
}

func toPrincipalResp(p model.Principal) principalResp {
	return principalResp{Username: p.Username, Role: string(p.Role), TableNumber: p.TableNumber}
}

// Login: verify credentials and return the principal with an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Provider.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	access, err := utils.NewAccessToken(h.JWTSecret, p, h.AccessTTLMin)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{
		principalResp: toPrincipalResp(p),
		Access:        tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me returns the principal resolved for this request.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": KindUnauthorized, "message": "unauthorized"})
	}
	return c.JSON(http.StatusOK, toPrincipalResp(p))
}
