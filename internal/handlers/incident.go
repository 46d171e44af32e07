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

type CreateIncidentRequest struct {
	Title       string                     `json:"title" binding:"required"`
	Description string                     `json:"description" binding:"required"`
	Severity    string                     `json:"severity" binding:"required"`
	OccurredAt  *time.Time                 `json:"occurred_at"`
	Components  []services.ComponentImpact `json:"components"`
}

type UpdateIncidentRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	OccurredAt  *time.Time `json:"occurred_at"`
}

type UpdateIncidentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AttachComponentsRequest struct {
	Components []services.ComponentImpact `json:"components" binding:"required"`
}

type DetachComponentsRequest struct {
	ComponentIDs []uint `json:"component_ids" binding:"required"`
}

type TimelineUpdateRequest struct {
	Message string `json:"message" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type ModifyTimelineRequest struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type DeleteTimelineRequest struct {
	UpdateIDs []uint `json:"update_ids" binding:"required"`
}

func CreateIncident(ctx *gin.Context) {
	var req CreateIncidentRequest

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

	input := services.CreateIncidentInput{
		OrgID:       orgID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Components:  req.Components,
	}

	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}

	incident, err := services.CreateIncident(db.DB, input)

	if err != nil {
		respondServiceError(ctx, "Create incident", err)
		return
	}

	realtime.Broadcast(orgID, "incident-created", incident)
	services.NotifySubscribers(db.DB, services.NotifyInput{
		OrgID:       orgID,
		EntityType:  "incident",
		EntityID:    incident.ID,
		Action:      "created",
		Title:       incident.Title,
		Description: incident.Description,
		Status:      incident.Status,
		Data:        incident,
	})

	ctx.JSON(http.StatusCreated, incident)
}

func ListIncidents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidents, err := services.ListIncidents(db.DB, orgID)

	if err != nil {
		respondServiceError(ctx, "List incidents", err)
		return
	}

	ctx.JSON(http.StatusOK, incidents)
}

func GetIncident(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	incident, err := services.GetIncident(db.DB, incidentID, orgID)

	if err != nil {
		respondServiceError(ctx, "Get incident", err)
		return
	}

	ctx.JSON(http.StatusOK, incident)
}

func UpdateIncidentDetails(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	var req UpdateIncidentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := services.UpdateIncidentDetails(db.DB, incidentID, orgID, services.UpdateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		OccurredAt:  req.OccurredAt,
	})

	if err != nil {
		respondServiceError(ctx, "Update incident", err)
		return
	}

	realtime.Broadcast(orgID, "incident-updated", incident)

	ctx.JSON(http.StatusOK, incident)
}

func UpdateIncidentStatus(ctx *gin.Context) {
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

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	var req UpdateIncidentStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := services.UpdateIncidentStatus(db.DB, incidentID, orgID, userID, req.Status)

	if err != nil {
		respondServiceError(ctx, "Update incident status", err)
		return
	}

	realtime.Broadcast(orgID, "incident-updated", incident)
	services.NotifySubscribers(db.DB, services.NotifyInput{
		OrgID:       orgID,
		EntityType:  "incident",
		EntityID:    incident.ID,
		Action:      "updated",
		Title:       incident.Title,
		Description: incident.Description,
		Status:      incident.Status,
		Data:        incident,
	})

	ctx.JSON(http.StatusOK, incident)
}

func DeleteIncident(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	if err := services.DeleteIncident(db.DB, incidentID, orgID); err != nil {
		respondServiceError(ctx, "Delete incident", err)
		return
	}

	realtime.Broadcast(orgID, "incident-deleted", gin.H{"id": incidentID})

	ctx.Status(http.StatusNoContent)
}

func AttachIncidentComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	var req AttachComponentsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.AttachComponents(db.DB, incidentID, orgID, req.Components); err != nil {
		respondServiceError(ctx, "Attach components", err)
		return
	}

	realtime.Broadcast(orgID, "incident-components-changed", gin.H{"incident_id": incidentID})

	ctx.JSON(http.StatusOK, gin.H{"message": "Components attached"})
}

func DetachIncidentComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	var req DetachComponentsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DetachComponents(db.DB, incidentID, orgID, req.ComponentIDs); err != nil {
		respondServiceError(ctx, "Detach components", err)
		return
	}

	realtime.Broadcast(orgID, "incident-components-changed", gin.H{"incident_id": incidentID})

	ctx.Status(http.StatusNoContent)
}

func ListIncidentComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	links, err := services.ListAttachedComponents(db.DB, incidentID, orgID)

	if err != nil {
		respondServiceError(ctx, "List attached components", err)
		return
	}

	ctx.JSON(http.StatusOK, links)
}

func ListIncidentUnattachedComponents(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	components, err := services.ListUnattachedComponents(db.DB, incidentID, orgID)

	if err != nil {
		respondServiceError(ctx, "List unattached components", err)
		return
	}

	ctx.JSON(http.StatusOK, components)
}

func AddIncidentTimelineUpdate(ctx *gin.Context) {
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

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	var req TimelineUpdateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := services.AddIncidentTimelineUpdate(db.DB, incidentID, orgID, userID, req.Message, req.Status)

	if err != nil {
		respondServiceError(ctx, "Add timeline update", err)
		return
	}

	realtime.Broadcast(orgID, "timeline-updated", entry)

	ctx.JSON(http.StatusOK, entry)
}

func ListIncidentTimeline(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	entries, err := services.ListIncidentTimeline(db.DB, incidentID, orgID)

	if err != nil {
		respondServiceError(ctx, "List timeline", err)
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

func ModifyIncidentTimelineUpdate(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
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

	entry, err := services.ModifyIncidentTimelineUpdate(db.DB, updateID, incidentID, orgID, req.Message, req.Status)

	if err != nil {
		respondServiceError(ctx, "Modify timeline update", err)
		return
	}

	ctx.JSON(http.StatusOK, entry)
}

func DeleteIncidentTimelineUpdates(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.ParamUint(ctx, "incident_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident ID"})
		return
	}

	var req DeleteTimelineRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteIncidentTimelineUpdates(db.DB, req.UpdateIDs, incidentID, orgID); err != nil {
		respondServiceError(ctx, "Delete timeline updates", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
