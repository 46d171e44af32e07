package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/statusdeck/statusdeck/internal/handlers"
	"github.com/statusdeck/statusdeck/internal/middleware"
	"github.com/statusdeck/statusdeck/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:org_id", middleware.AuthMiddleware(), middleware.RequireOrganization(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.PATCH("/me", middleware.AuthMiddleware(), handlers.UpdateUser)
			auth.DELETE("/me", middleware.AuthMiddleware(), handlers.DeleteUser)
		}

		organizations := api.Group("/organizations", middleware.AuthMiddleware())
		{
			organizations.POST("", handlers.CreateOrganization)
			organizations.GET("", handlers.ListOrganizations)

			org := organizations.Group("/:org_id", middleware.RequireOrganization())
			{
				org.PATCH("", middleware.RequireRole(types.RoleOwner), handlers.UpdateOrganization)
				org.DELETE("", middleware.RequireRole(types.RoleOwner), handlers.DeleteOrganization)

				// Component endpoints
				org.POST("/components", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.CreateComponent)
				org.GET("/components", handlers.ListComponents)
				org.GET("/components/:component_id", handlers.GetComponent)
				org.PATCH("/components/:component_id", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.UpdateComponent)
				org.DELETE("/components/:component_id", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.DeleteComponent)

				// Incident endpoints
				org.POST("/incidents", handlers.CreateIncident)
				org.GET("/incidents", handlers.ListIncidents)
				org.GET("/incidents/:incident_id", handlers.GetIncident)
				org.PATCH("/incidents/:incident_id", handlers.UpdateIncidentDetails)
				org.PATCH("/incidents/:incident_id/status", handlers.UpdateIncidentStatus)
				org.DELETE("/incidents/:incident_id", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.DeleteIncident)
				org.POST("/incidents/:incident_id/components", handlers.AttachIncidentComponents)
				org.DELETE("/incidents/:incident_id/components", handlers.DetachIncidentComponents)
				org.GET("/incidents/:incident_id/components", handlers.ListIncidentComponents)
				org.GET("/incidents/:incident_id/components/unattached", handlers.ListIncidentUnattachedComponents)
				org.POST("/incidents/:incident_id/timeline", handlers.AddIncidentTimelineUpdate)
				org.GET("/incidents/:incident_id/timeline", handlers.ListIncidentTimeline)
				org.PATCH("/incidents/:incident_id/timeline/:update_id", handlers.ModifyIncidentTimelineUpdate)
				org.DELETE("/incidents/:incident_id/timeline", handlers.DeleteIncidentTimelineUpdates)

				// Maintenance endpoints
				org.POST("/maintenances", handlers.CreateMaintenance)
				org.GET("/maintenances", handlers.ListMaintenances)
				org.GET("/maintenances/:maintenance_id", handlers.GetMaintenance)
				org.PATCH("/maintenances/:maintenance_id", handlers.UpdateMaintenanceDetails)
				org.PATCH("/maintenances/:maintenance_id/status", handlers.UpdateMaintenanceStatus)
				org.DELETE("/maintenances/:maintenance_id", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.DeleteMaintenance)
				org.POST("/maintenances/:maintenance_id/components", handlers.AttachMaintenanceComponents)
				org.DELETE("/maintenances/:maintenance_id/components", handlers.DetachMaintenanceComponents)
				org.GET("/maintenances/:maintenance_id/components", handlers.ListMaintenanceComponents)
				org.GET("/maintenances/:maintenance_id/components/unattached", handlers.ListMaintenanceUnattachedComponents)
				org.POST("/maintenances/:maintenance_id/timeline", handlers.AddMaintenanceTimelineUpdate)
				org.GET("/maintenances/:maintenance_id/timeline", handlers.ListMaintenanceTimeline)
				org.GET("/maintenances/:maintenance_id/timeline/:update_id", handlers.GetMaintenanceTimelineUpdate)
				org.PATCH("/maintenances/:maintenance_id/timeline/:update_id", handlers.ModifyMaintenanceTimelineUpdate)
				org.DELETE("/maintenances/:maintenance_id/timeline", handlers.DeleteMaintenanceTimelineUpdates)

				// Subscriber endpoints
				org.GET("/subscribers", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.ListSubscribers)
				org.DELETE("/subscribers/:subscriber_id", middleware.RequireRole(types.RoleOwner, types.RoleAdmin), handlers.DeleteSubscriber)
			}
		}

		public := api.Group("/public/:org_slug")
		{
			public.GET("/status", handlers.PublicStatus)
			public.GET("/incidents", handlers.PublicIncidents)
			public.GET("/maintenances", handlers.PublicMaintenances)
			public.POST("/subscribe", handlers.SubscribeToStatusPage)
			public.POST("/verify", handlers.VerifySubscription)
			public.POST("/unsubscribe", handlers.Unsubscribe)
		}
	}

	return r
}
