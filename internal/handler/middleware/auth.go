package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase/shared"
)

const ctxPrincipalKey = "principal"

var errMissingToken = errs.New("access token required")

type AuthMiddleware struct {
	identity *shared.IdentityResolver
}

func NewAuthMiddleware(identity *shared.IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// RequireAuth resolves the bearer token into the live principal. Guests pass
// through here like registered users; capability checks happen per operation
// in the usecase layer.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized,
				errMissingToken, "token_missing", "Access token required", nil)
			return
		}

		principal, err := m.identity.Resolve(c.Request.Context(), token)
		if err != nil {
			slog.Warn("token resolution failed", "error", err.Error())
			httperr.Map(c, err)
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth resolves a token when one is present but never aborts. Used
// on register/login so a guest's identity can follow them into the account.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := m.identity.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}

// SetPrincipal attaches the resolved principal to the request context.
func SetPrincipal(c *gin.Context, p *user.Principal) {
	c.Set(ctxPrincipalKey, p)
}

func GetPrincipal(c *gin.Context) (*user.Principal, bool) {
	v, exists := c.Get(ctxPrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*user.Principal)
	return p, ok
}
