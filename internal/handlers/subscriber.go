package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/db"
	"github.com/statusdeck/statusdeck/internal/services"
	"github.com/statusdeck/statusdeck/internal/utils"
)

func ListSubscribers(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subscribers, err := services.ListSubscribers(db.DB, orgID)

	if err != nil {
		respondServiceError(ctx, "List subscribers", err)
		return
	}

	ctx.JSON(http.StatusOK, subscribers)
}

func DeleteSubscriber(ctx *gin.Context) {
	orgID, err := utils.GetOrgID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subscriberID, err := utils.ParamUint(ctx, "subscriber_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscriber ID"})
		return
	}

	if err := services.DeleteSubscriber(db.DB, subscriberID, orgID); err != nil {
		respondServiceError(ctx, "Delete subscriber", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
