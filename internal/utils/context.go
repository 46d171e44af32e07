package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/internal/middleware"
	"github.com/statusdeck/statusdeck/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("user not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetOrgID returns the organization resolved by the RequireOrganization
// middleware.
func GetOrgID(ctx *gin.Context) (uint, error) {
	orgValue, exists := ctx.Get(types.ContextOrgKey)

	if !exists {
		return 0, fmt.Errorf("organization not resolved")
	}

	orgID, ok := orgValue.(uint)

	if !ok {
		return 0, fmt.Errorf("invalid organization type in context")
	}

	return orgID, nil
}

// ParamUint parses a numeric path parameter.
func ParamUint(ctx *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 64)

	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(value), nil
}
