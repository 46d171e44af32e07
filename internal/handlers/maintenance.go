package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/realtime"
	"github.com/statusdeck/statusdeck/internal/services"
	"github.com/statusdeck/statusdeck/internal/utils"
)

type CreateMaintenanceRequest struct {
	Title       string                     `json:"title" binding:"required"`
	Description string                     `json:"description" binding:"required"`
	StartAt     time.Time                  `json:"start_at" binding:"required"`
	EndAt       time.Time                  `json:"end_at" binding:"required"`
	Components  []services.ComponentImpact `json:"components"`
}

type UpdateMaintenanceRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

type UpdateMaintenanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateMaintenance(ctx *gin.Context) {
	var req CreateMaintenanceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenance, err := services.CreateMaintenance(db.DB, services.CreateMaintenanceInput{
		OrgID:       orgID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Components:  req.Components,
	})

	if err != nil {
		respondServiceError(ctx, "Create maintenance", err)
		return
	}

	realtime.Broadcast(orgID, "maintenance-created", maintenance)
	services.NotifySubscribers(db.DB, services.NotifyInput{
		OrgID:       orgID,
		EntityType:  "maintenance",
		EntityID:    maintenance.ID,
		Action:      "created",
		Title:       maintenance.Title,
		Description: maintenance.Description,
		Status:      maintenance.Status,
		Data:        maintenance,
	})

	ctx.JSON(http.StatusCreated, maintenance)
}

func ListMaintenances(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenances, err := services.ListMaintenances(db.DB, orgID)

	if err != nil {
		respondServiceError(ctx, "List maintenances", err)
		return
	}

	ctx.JSON(http.StatusOK, maintenances)
}

func GetMaintenance(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	maintenance, err := services.GetMaintenance(db.DB, maintenanceID, orgID)

	if err != nil {
		respondServiceError(ctx, "Get maintenance", err)
		return
	}

	ctx.JSON(http.StatusOK, maintenance)
}

func UpdateMaintenanceDetails(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req UpdateMaintenanceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title == "" && req.Description == "" && req.StartAt == nil && req.EndAt == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	maintenance, err := services.UpdateMaintenanceDetails(db.DB, maintenanceID, orgID, services.UpdateMaintenanceInput{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	})

	if err != nil {
		respondServiceError(ctx, "Update maintenance", err)
		return
	}

	realtime.Broadcast(orgID, "maintenance-updated", maintenance)

	ctx.JSON(http.StatusOK, maintenance)
}

func UpdateMaintenanceStatus(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req UpdateMaintenanceStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maintenance, err := services.UpdateMaintenanceStatus(db.DB, maintenanceID, orgID, userID, req.Status)

	if err != nil {
		respondServiceError(ctx, "Update maintenance status", err)
		return
	}

	realtime.Broadcast(orgID, "maintenance-updated", maintenance)
	services.NotifySubscribers(db.DB, services.NotifyInput{
		OrgID:       orgID,
		EntityType:  "maintenance",
		EntityID:    maintenance.ID,
		Action:      "updated",
		Title:       maintenance.Title,
		Description: maintenance.Description,
		Status:      maintenance.Status,
		Data:        maintenance,
	})

	ctx.JSON(http.StatusOK, maintenance)
}

func DeleteMaintenance(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	if err := services.DeleteMaintenance(db.DB, maintenanceID, orgID); err != nil {
		respondServiceError(ctx, "Delete maintenance", err)
		return
	}

	realtime.Broadcast(orgID, "maintenance-deleted", gin.H{"id": maintenanceID})

	ctx.Status(http.StatusNoContent)
}

func AttachMaintenanceComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req AttachComponentsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.AttachMaintenanceComponents(db.DB, maintenanceID, orgID, req.Components); err != nil {
		respondServiceError(ctx, "Attach maintenance components", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Components attached"})
}

func DetachMaintenanceComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req DetachComponentsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DetachMaintenanceComponents(db.DB, maintenanceID, orgID, req.ComponentIDs); err != nil {
		respondServiceError(ctx, "Detach maintenance components", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListMaintenanceComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	links, err := services.ListMaintenanceComponents(db.DB, maintenanceID, orgID)

	if err != nil {
		respondServiceError(ctx, "List maintenance components", err)
		return
	}

	ctx.JSON(http.StatusOK, links)
}

func ListMaintenanceUnattachedComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	components, err := services.ListUnattachedMaintenanceComponents(db.DB, maintenanceID, orgID)

	if err != nil {
		respondServiceError(ctx, "List unattached maintenance components", err)
		return
	}

	ctx.JSON(http.StatusOK, components)
}

func AddMaintenanceTimelineUpdate(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req TimelineUpdateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := services.AddMaintenanceTimelineUpdate(db.DB, maintenanceID, orgID, userID, req.Message, req.Status)

	if err != nil {
		respondServiceError(ctx, "Add maintenance timeline update", err)
		return
	}

	realtime.Broadcast(orgID, "timeline-updated", entry)

	ctx.JSON(http.StatusOK, entry)
}

func ListMaintenanceTimeline(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	entries, err := services.ListMaintenanceTimeline(db.DB, maintenanceID, orgID)

	if err != nil {
		respondServiceError(ctx, "List maintenance timeline", err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

func GetMaintenanceTimelineUpdate(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	updateID, err := utils.ParamUint(ctx, "update_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update ID"})
		return
	}

	entry, err := services.GetMaintenanceTimelineUpdate(db.DB, updateID, maintenanceID, orgID)

	if err != nil {
		respondServiceError(ctx, "Get maintenance timeline update", err)
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

func ModifyMaintenanceTimelineUpdate(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	updateID, err := utils.ParamUint(ctx, "update_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update ID"})
		return
	}

	var req ModifyTimelineRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := services.ModifyMaintenanceTimelineUpdate(db.DB, updateID, maintenanceID, orgID, req.Message, req.Status)

	if err != nil {
		respondServiceError(ctx, "Modify maintenance timeline update", err)
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

func DeleteMaintenanceTimelineUpdates(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	maintenanceID, err := utils.ParamUint(ctx, "maintenance_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req DeleteTimelineRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteMaintenanceTimelineUpdates(db.DB, req.UpdateIDs, maintenanceID, orgID); err != nil {
		respondServiceError(ctx, "Delete maintenance timeline updates", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
