package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/types"
	"github.com/statusdeck/statusdeck/internal/utils"
	"gorm.io/gorm"
)

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type UpdateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

type OrganizationResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Role string `json:"role,omitempty"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func CreateOrganization(ctx *gin.Context) {
	var body CreateOrganizationRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	body.Slug = strings.ToLower(strings.TrimSpace(body.Slug))

	if !slugPattern.MatchString(body.Slug) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Slug must be lowercase letters, digits and hyphens"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	org := models.Organization{
		Name: body.Name,
		Slug: body.Slug,
	}

	// The org and its owner membership are one unit
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		membership := models.OrganizationMembership{
			UserID: userID,
			OrgID:  org.ID,
			Role:   types.RoleOwner,
		}

		return tx.Create(&membership).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Slug already taken"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create organization"})
		return
	}

	ctx.JSON(http.StatusCreated, OrganizationResponse{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
		Role: types.RoleOwner,
	})
}

func ListOrganizations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var memberships []models.OrganizationMembership

	if err := db.DB.Preload("Organization").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve organizations"})
		return
	}

	response := make([]OrganizationResponse, 0, len(memberships))

	for _, membership := range memberships {
		response = append(response, OrganizationResponse{
			ID:   membership.Organization.ID,
			Name: membership.Organization.Name,
			Slug: membership.Organization.Slug,
			Role: membership.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateOrganization(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateOrganizationRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var org models.Organization

	if err := db.DB.First(&org, orgID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	org.Name = body.Name

	if err := db.DB.Save(&org).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update organization"})
		return
	}

	ctx.JSON(http.StatusOK, OrganizationResponse{ID: org.ID, Name: org.Name, Slug: org.Slug})
}

func DeleteOrganization(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var org models.Organization

	if err := db.DB.First(&org, orgID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	// Unscoped so the slug's unique index slot is freed for re-creation
	if err := db.DB.Unscoped().Delete(&org).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete organization"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
