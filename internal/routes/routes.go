package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/handlers"
	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/middleware"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
	"hospital-hmis-server/internal/scheduler"
)

// SetupRoutes configures the application routes. lifecycle is the
// process-wide context handed to endpoints that spawn background work.
func SetupRoutes(router *gin.Engine, lifecycle context.Context, db *gorm.DB, cfg *config.Config, dispatcher *notify.Dispatcher, sched *scheduler.Scheduler, log *logger.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(db, cfg, dispatcher, log)
	workflowHandler := handlers.NewWorkflowHandler(db, cfg, dispatcher, log)
	adminHandler := handlers.NewAdminHandler(db, cfg, log)
	departmentHandler := handlers.NewDepartmentHandler(db, log)
	systemHandler := handlers.NewSystemHandler(lifecycle, sched, dispatcher, log)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		// Single dispatch endpoint plus explicit aliases kept for older clients.
		public.POST("/auth", authHandler.Auth)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/signin", authHandler.Login)
		public.POST("/auth/refresh-token", authHandler.RefreshToken)

		// Patients book without an account; identity is the contact details.
		public.POST("/appointments", appointmentHandler.CreateAppointment)
		public.GET("/departments", departmentHandler.GetDepartments)

		// Guest self-service keyed by email.
		public.GET("/user/appointments", appointmentHandler.GetUserAppointments)
		public.PUT("/user/appointments/:id", appointmentHandler.RescheduleAppointment)
		public.DELETE("/user/appointments/:id", appointmentHandler.CancelAppointment)
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutes := private.Group("/auth")
		{
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/profile", authHandler.GetProfile)
		}

		private.GET("/appointments", appointmentHandler.GetAppointments)
		private.GET("/appointments/:id", appointmentHandler.GetAppointmentByID)
	}

	// Staff routes: admins and super admins.
	staff := router.Group("/api")
	staff.Use(middleware.AuthMiddleware(cfg), middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSuperAdmin))
	{
		staff.POST("/appointments/:id/admin-action", workflowHandler.AdminAction)
		staff.POST("/appointments/:id/forward", workflowHandler.Forward)
		staff.GET("/appointments/forwarded", workflowHandler.GetForwardedAppointments)

		adminRoutes := staff.Group("/admin")
		{
			adminRoutes.GET("/appointments", adminHandler.GetAllAppointments)
			adminRoutes.POST("/appointments", appointmentHandler.CreateAppointment)
			adminRoutes.PUT("/appointments/:id", adminHandler.UpdateAppointment)
			adminRoutes.DELETE("/appointments/:id", adminHandler.DeleteAppointment)

			adminRoutes.GET("/users", adminHandler.GetUsers)
			adminRoutes.POST("/users", adminHandler.CreateUser)
			adminRoutes.PUT("/users/:id", adminHandler.UpdateUser)
			adminRoutes.DELETE("/users/:id", adminHandler.DeleteUser)

			adminRoutes.GET("/stats", adminHandler.GetStats)
		}

		staff.POST("/departments", departmentHandler.CreateDepartment)
		staff.POST("/initialize", departmentHandler.Initialize)

		staff.GET("/start-scheduler", systemHandler.StartScheduler)
		staff.POST("/trigger-reminders", systemHandler.TriggerReminders)
		staff.GET("/test-messaging", systemHandler.MessagingStatus)
		staff.POST("/test-messaging", systemHandler.TestMessaging)
	}

	// Super-admin decisions; the hyphenated path is canonical, the joined
	// spelling is a legacy alias.
	superAdmin := router.Group("/api")
	superAdmin.Use(middleware.AuthMiddleware(cfg), middleware.RoleAuthMiddleware(models.RoleSuperAdmin))
	{
		superAdmin.POST("/appointments/:id/super-admin-action", workflowHandler.SuperAdminAction)
		superAdmin.POST("/appointments/:id/superadmin-action", workflowHandler.SuperAdminAction)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
