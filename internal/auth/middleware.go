package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	dom "vidtube/internal/domain"
	"vidtube/internal/response"
)

// Cookie names shared with the handlers that set them.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

const contextKeyUser = "user"

// UserFromContext returns the user set by RequireUser.
func UserFromContext(c *gin.Context) (dom.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return dom.User{}, false
	}
	u, ok := v.(dom.User)
	return u, ok
}

// RequireUser returns a middleware that checks the access token (cookie first,
// then Authorization: Bearer) and stores the resolved user in context.
// The stored user never carries password hash or refresh token.
func RequireUser(tokens *TokenService, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessTokenFrom(c)
		if token == "" {
			response.Abort(c, fmt.Errorf("%w: access token is required", dom.ErrUnauthorized))
			return
		}
		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, err)
			return
		}
		u, err := users.GetPublicByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, dom.ErrNotFound) {
				response.Abort(c, fmt.Errorf("%w: invalid access token", dom.ErrUnauthorized))
				return
			}
			response.Abort(c, err)
			return
		}
		c.Set(contextKeyUser, u.Sanitized())
		c.Next()
	}
}

func accessTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(AccessTokenCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}
