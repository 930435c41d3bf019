package main

import (
	"github.com/bugnest/backend/internal/middleware"
	"github.com/bugnest/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for unauthenticated auth endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "bugnest"})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/register", svc.authHandler.Register)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		protected.Use(middleware.AuditLog(svc.logService))
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Users (self-service)
			protected.PUT("/users/profile", svc.userHandler.UpdateProfile)
			protected.PUT("/users/change-password", svc.userHandler.ChangePassword)

			// Projects
			protected.GET("/projects", svc.projHandler.List)
			protected.POST("/projects", svc.projHandler.Create)

			// Memberships and invitations
			protected.GET("/projects/invites", svc.memHandler.MyInvites)
			protected.POST("/projects/invites/:inviteId/respond", svc.memHandler.Respond)
			protected.GET("/projects/:id/members", svc.memHandler.ListMembers)
			protected.POST("/projects/:id/invite", svc.memHandler.Invite)
			protected.DELETE("/projects/:id/members/:memberId", svc.memHandler.RemoveMember)

			// Bugs
			protected.GET("/projects/:id/bugs", svc.bugHandler.ListByProject)
			protected.POST("/bugs", svc.bugHandler.Create)
			protected.PUT("/bugs/:id/status", svc.bugHandler.UpdateStatus)
			protected.PUT("/bugs/:id/assign", svc.bugHandler.Assign)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		admin.Use(middleware.AuditLog(svc.logService))
		{
			admin.GET("/users", svc.userHandler.ListByRole)
			admin.POST("/users", svc.userHandler.Create)
			admin.GET("/admin/logs", svc.logHandler.List)
		}
	}
}
