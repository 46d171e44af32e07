package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
)

// RequireOrganization resolves the :org_id path parameter, verifies the
// current user is a member, and stores the org ID and membership role in the
// request context. Every query downstream is scoped by that org ID.
func RequireOrganization() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		orgIDStr := ctx.Param("org_id")

		orgID, err := strconv.ParseUint(orgIDStr, 10, 64)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid organization ID"})
			return
		}

		userValue, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := userValue.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var membership models.OrganizationMembership

		if err := db.DB.Where("org_id = ? AND user_id = ?", orgID, user.ID).First(&membership).Error; err != nil {
			// Non-members get the same answer as a missing org
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
			return
		}

		ctx.Set(types.ContextOrgKey, uint(orgID))
		ctx.Set(types.ContextRoleKey, membership.Role)
		ctx.Next()
	}
}

// RequireRole gates a route on the membership role set by
// RequireOrganization.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		roleValue, exists := ctx.Get(types.ContextRoleKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		role, ok := roleValue.(string)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
