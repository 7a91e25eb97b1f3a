package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/skoolhq/sms-portal-api/internal/middleware"
	"github.com/skoolhq/sms-portal-api/internal/models"
	"github.com/skoolhq/sms-portal-api/internal/service"
)

// Set bundles every handler so route registration stays in one place.
type Set struct {
	Auth          *AuthHandler
	Students      *StudentHandler
	Admins        *AdminHandler
	Notifications *NotificationHandler
	Stats         *StatsHandler
	Backup        *BackupHandler
	Exports       *ExportHandler
	Sync          *SyncHandler
	Metrics       *MetricsHandler
}

// Register mounts all routes on the engine. Admin routes require the ADMIN
// role, /me routes require STUDENT; both sit behind JWT validation.
func (s *Set) Register(r *gin.Engine, auth *service.AuthService) {
	r.GET("/health", s.Metrics.Health)
	r.GET("/metrics", s.Metrics.Prometheus)

	v1 := r.Group("/api/v1")

	v1.POST("/auth/admin/login", s.Auth.AdminLogin)
	v1.POST("/auth/student/login", s.Auth.StudentLogin)

	admin := v1.Group("", middleware.JWT(auth), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/students", s.Students.List)
		admin.POST("/students", s.Students.Create)
		admin.GET("/students/:id", s.Students.Get)
		admin.PUT("/students/:id", s.Students.Update)
		admin.DELETE("/students/:id", s.Students.Delete)

		admin.GET("/admins", s.Admins.List)
		admin.POST("/admins", s.Admins.Create)
		admin.GET("/admins/:id", s.Admins.Get)
		admin.PUT("/admins/:id", s.Admins.Update)
		admin.DELETE("/admins/:id", s.Admins.Delete)

		admin.POST("/notifications", s.Notifications.Create)

		admin.GET("/stats", s.Stats.Overview)

		admin.GET("/backup/export", s.Backup.Export)
		admin.POST("/backup/import", s.Backup.Import)

		admin.GET("/exports/students.csv", s.Exports.StudentsCSV)
		admin.GET("/exports/fees.pdf", s.Exports.FeesPDF)

		admin.POST("/sync/drain", s.Sync.Drain)
		admin.GET("/sync/status", s.Sync.Status)
		admin.PUT("/sync/connectivity", s.Sync.SetConnectivity)
	}

	student := v1.Group("", middleware.JWT(auth), middleware.RequireRole(models.RoleStudent))
	{
		student.GET("/me", s.Students.Me)
		student.PUT("/me/contact", s.Students.UpdateMyContact)
		student.PUT("/me/password", s.Auth.ChangeMyPassword)
		student.GET("/me/notifications", s.Notifications.ListMine)
		student.PUT("/me/notifications/:id/read", s.Notifications.MarkMineRead)
	}
}
