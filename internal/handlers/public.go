package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/models"
	"github.com/statusdeck/statusdeck/internal/services"
	"github.com/statusdeck/statusdeck/internal/status"
	"github.com/statusdeck/statusdeck/internal/types"
	"gorm.io/gorm"
)

type PublicComponent struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifySubscriptionRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// publicOrg resolves the status page organization from the slug path param.
func publicOrg(ctx *gin.Context) (*models.Organization, bool) {
	slug := ctx.Param("org_slug")

	var org models.Organization

	if err := db.DB.Where("slug = ?", slug).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Status page not found"})
			return nil, false
		}

		respondServiceError(ctx, "Resolve status page", err)
		return nil, false
	}

	return &org, true
}

// PublicStatus returns every component of the status page with its derived
// status. Statuses are recomputed from active incidents on each request.
func PublicStatus(ctx *gin.Context) {
	org, ok := publicOrg(ctx)

	if !ok {
		return
	}

	var components []models.Component

	if err := db.DB.Where("org_id = ?", org.ID).Order("name ASC").Find(&components).Error; err != nil {
		respondServiceError(ctx, "List public components", err)
		return
	}

	derived, err := status.EffectiveAll(db.DB, org.ID)

	if err != nil {
		respondServiceError(ctx, "Derive component statuses", err)
		return
	}

	out := make([]PublicComponent, 0, len(components))

	for _, component := range components {
		effective := component.Status

		if s, ok := derived[component.ID]; ok {
			effective = s
		}

		out = append(out, PublicComponent{
			ID:          component.ID,
			Name:        component.Name,
			Description: component.Description,
			Status:      effective,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"organization": gin.H{"name": org.Name, "slug": org.Slug},
		"components":   out,
	})
}

// PublicIncidents returns incidents that opened today plus any still unresolved,
// each with its timeline.
func PublicIncidents(ctx *gin.Context) {
	org, ok := publicOrg(ctx)

	if !ok {
		return
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var incidents []models.Incident

	err := db.DB.Where("org_id = ? AND (occurred_at >= ? OR status <> ?)", org.ID, dayStart, types.IncidentResolved).
		Preload("Components.Component").
		Preload("Timeline", func(gdb *gorm.DB) *gorm.DB {
			return gdb.Order("created_at DESC")
		}).
		Order("occurred_at DESC").
		Find(&incidents).Error

	if err != nil {
		respondServiceError(ctx, "List public incidents", err)
		return
	}

	ctx.JSON(http.StatusOK, incidents)
}

func PublicMaintenances(ctx *gin.Context) {
	org, ok := publicOrg(ctx)

	if !ok {
		return
	}

	var maintenances []models.Maintenance

	err := db.DB.Where("org_id = ? AND status <> ?", org.ID, types.MaintenanceCompleted).
		Preload("Components.Component").
		Order("start_at ASC").
		Find(&maintenances).Error

	if err != nil {
		respondServiceError(ctx, "List public maintenances", err)
		return
	}

	ctx.JSON(http.StatusOK, maintenances)
}

func SubscribeToStatusPage(ctx *gin.Context) {
	org, ok := publicOrg(ctx)

	if !ok {
		return
	}

	var req SubscribeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := services.Subscribe(db.DB, org.ID, req.Email)

	if err != nil {
		respondServiceError(ctx, "Subscribe", err)
		return
	}

	switch outcome {
	case services.SubscribeResubscribed:
		ctx.JSON(http.StatusOK, gin.H{"message": "Subscription restored"})
	case services.SubscribeCodeResent:
		ctx.JSON(http.StatusOK, gin.H{"message": "A new verification email has been sent"})
	default:
		ctx.JSON(http.StatusCreated, gin.H{"message": "Verification email sent"})
	}
}

func VerifySubscription(ctx *gin.Context) {
	org, ok := publicOrg(ctx)

	if !ok {
		return
	}

	var req VerifySubscriptionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := services.VerifySubscriber(db.DB, org.ID, req.Email, req.Code); err != nil {
		respondServiceError(ctx, "Verify subscription", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Subscription confirmed"})
}

func Unsubscribe(ctx *gin.Context) {
	org, ok := publicOrg(ctx)

	if !ok {
		return
	}

	var req UnsubscribeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := services.UnsubscribeSubscriber(db.DB, org.ID, req.Email, req.Code); err != nil {
		respondServiceError(ctx, "Unsubscribe", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed"})
}
