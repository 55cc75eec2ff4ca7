package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"vidtube/internal/auth"
	dom "vidtube/internal/domain"
	"vidtube/internal/response"
)

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, fmt.Errorf("%w: invalid %s", dom.ErrValidation, name))
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	response.Fail(c, fmt.Errorf("%w: %v", dom.ErrValidation, err))
}

// currentUser returns the identity set by auth.RequireUser.
func currentUser(c *gin.Context) (dom.User, bool) {
	u, ok := auth.UserFromContext(c)
	if !ok {
		response.Fail(c, fmt.Errorf("%w: not logged in", dom.ErrUnauthorized))
		return dom.User{}, false
	}
	return u, true
}
