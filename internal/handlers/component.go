package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/realtime"
	"github.com/statusdeck/statusdeck/internal/status"
	"github.com/statusdeck/statusdeck/internal/types"
	"github.com/statusdeck/statusdeck/internal/utils"
	"gorm.io/gorm"
)

type CreateComponentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type UpdateComponentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type ComponentResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	EffectiveStatus string    `json:"effective_status,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func CreateComponent(ctx *gin.Context) {
	var body CreateComponentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if body.Status == "" {
		body.Status = types.ComponentOperational
	}

	if !types.ValidComponentStatus(body.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid component status"})
		return
	}

	var existing models.Component

	err = db.DB.Where("org_id = ? AND name = ?", orgID, body.Name).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Component already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create component"})
		return
	}

	component := models.Component{
		OrgID:       orgID,
		Name:        body.Name,
		Description: body.Description,
		Status:      body.Status,
	}

	if err := db.DB.Create(&component).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create component"})
		return
	}

	realtime.Broadcast(orgID, "component-created", component)

	ctx.JSON(http.StatusCreated, ComponentResponse{
		ID:          component.ID,
		Name:        component.Name,
		Description: component.Description,
		Status:      component.Status,
		CreatedAt:   component.CreatedAt,
	})
}

func ListComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var components []models.Component

	if err := db.DB.Where("org_id = ?", orgID).Order("created_at DESC").Find(&components).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve components"})
		return
	}

	// Derived statuses are recomputed on every listing, never cached
	effective, err := status.EffectiveAll(db.DB, orgID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute component status"})
		return
	}

	response := make([]ComponentResponse, 0, len(components))

	for _, component := range components {
		response = append(response, ComponentResponse{
			ID:              component.ID,
			Name:            component.Name,
			Description:     component.Description,
			Status:          component.Status,
			EffectiveStatus: effective[component.ID],
			CreatedAt:       component.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetComponent(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	componentID, err := utils.ParamUint(ctx, "component_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid component ID"})
		return
	}

	var component models.Component

	if err := db.DB.Where("id = ? AND org_id = ?", componentID, orgID).First(&component).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Component not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve component"})
		}
		return
	}

	effectiveStatus, err := status.Effective(db.DB, component.ID, orgID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute component status"})
		return
	}

	ctx.JSON(http.StatusOK, ComponentResponse{
		ID:              component.ID,
		Name:            component.Name,
		Description:     component.Description,
		Status:          component.Status,
		EffectiveStatus: effectiveStatus,
		CreatedAt:       component.CreatedAt,
	})
}

func UpdateComponent(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	componentID, err := utils.ParamUint(ctx, "component_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid component ID"})
		return
	}

	var body UpdateComponentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Name == "" && body.Description == "" && body.Status == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
		return
	}

	if body.Status != "" && !types.ValidComponentStatus(body.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid component status"})
		return
	}

	var component models.Component

	if err := db.DB.Where("id = ? AND org_id = ?", componentID, orgID).First(&component).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Component not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve component"})
		}
		return
	}

	if body.Name != "" {
		component.Name = body.Name
	}

	if body.Description != "" {
		component.Description = body.Description
	}

	if body.Status != "" {
		component.Status = body.Status
	}

	if err := db.DB.Save(&component).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update component"})
		return
	}

	realtime.Broadcast(orgID, "component-updated", component)

	ctx.JSON(http.StatusOK, ComponentResponse{
		ID:          component.ID,
		Name:        component.Name,
		Description: component.Description,
		Status:      component.Status,
		CreatedAt:   component.CreatedAt,
	})
}

func DeleteComponent(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	componentID, err := utils.ParamUint(ctx, "component_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid component ID"})
		return
	}

	var component models.Component

	if err := db.DB.Where("id = ? AND org_id = ?", componentID, orgID).First(&component).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Component not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve component"})
		}
		return
	}

	if err := db.DB.Delete(&component).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete component"})
		return
	}

	realtime.Broadcast(orgID, "component-deleted", gin.H{"id": component.ID})

	ctx.Status(http.StatusNoContent)
}
