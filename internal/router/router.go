// Package router assembles the HTTP surface of the records API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/handler"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/service"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth        *handler.AuthHandler
	Students    *handler.StudentHandler
	Lecturers   *handler.LecturerHandler
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Transcripts *handler.TranscriptHandler
	Dashboard   *handler.DashboardHandler
	Metrics     *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies used by route middleware.
type Options struct {
	Prefix        string
	Authenticator middleware.Authenticator
	Audit         middleware.AuditRecorder
	Invalidator   middleware.CacheInvalidator
	Metrics       *service.MetricsService
	Logger        *zap.Logger
	// ExposeMetrics mounts /metrics and /admin/metrics.
	ExposeMetrics bool
	// Transcripts mounts the transcript and roster downloads.
	Transcripts bool
}

const (
	admin    = string(models.RoleAdmin)
	lecturer = string(models.RoleLecturer)
	self     = middleware.Self
)

// Register mounts health checks at the root and the API under opts.Prefix.
func Register(r *gin.Engine, h Handlers, opts Options) {
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if opts.ExposeMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(opts.Audit, opts.Logger, action, resource)
	}

	api := r.Group(opts.Prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
	}

	protected := api.Group("")
	protected.Use(middleware.Authenticate(opts.Authenticator))
	protected.Use(middleware.InvalidateOnWrite(opts.Invalidator))

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/logout", h.Auth.Logout)

	students := protected.Group("/students")
	{
		students.GET("", middleware.RBAC(admin, lecturer), h.Students.List)
		students.POST("", middleware.RBAC(admin), audit(models.AuditActionCreate, "students"), h.Students.Create)
		students.GET("/:id", middleware.RBAC(admin, lecturer, self), h.Students.Get)
		students.PUT("/:id", middleware.RBAC(admin, self), audit(models.AuditActionUpdate, "students"), h.Students.Update)
		students.DELETE("/:id", middleware.RBAC(admin), audit(models.AuditActionDelete, "students"), h.Students.Delete)

		students.GET("/:id/enrollments", middleware.RBAC(admin, self), h.Enrollments.ListForStudent)
		students.POST("/:id/enrollments", middleware.RBAC(admin, self), audit(models.AuditActionCreate, "enrollments"), h.Enrollments.Enroll)
		students.DELETE("/:id/enrollments/:enrollmentId", middleware.RBAC(admin, self), audit(models.AuditActionDelete, "enrollments"), h.Enrollments.Drop)
		students.GET("/:id/grades", middleware.RBAC(admin, self), h.Enrollments.Grades)
		if opts.Transcripts {
			students.GET("/:id/transcript", middleware.RBAC(admin, self), h.Transcripts.Student)
		}
	}

	lecturers := protected.Group("/lecturers")
	{
		lecturers.GET("", middleware.RBAC(admin), h.Lecturers.List)
		lecturers.POST("", middleware.RBAC(admin), audit(models.AuditActionCreate, "lecturers"), h.Lecturers.Create)
		lecturers.GET("/:id", middleware.RBAC(admin, lecturer), h.Lecturers.Get)
		lecturers.PUT("/:id", middleware.RBAC(admin, self), audit(models.AuditActionUpdate, "lecturers"), h.Lecturers.Update)
		lecturers.DELETE("/:id", middleware.RBAC(admin), audit(models.AuditActionDelete, "lecturers"), h.Lecturers.Delete)
		lecturers.PUT("/:id/password", middleware.RBAC(admin, self), audit(models.AuditActionPasswordChange, "lecturers"), h.Lecturers.ChangePassword)

		lecturers.GET("/:id/courses", middleware.RBAC(admin, self), h.Lecturers.Courses)
		lecturers.GET("/:id/courses/:courseId/enrollments", middleware.RBAC(admin, self), h.Enrollments.LecturerCourseEnrollments)
		lecturers.PUT("/:id/enrollments/:enrollmentId/grade", middleware.RBAC(admin, self), audit(models.AuditActionUpdate, "grades"), h.Enrollments.LecturerAssignGrade)
		if opts.Transcripts {
			lecturers.GET("/:id/courses/:courseId/roster", middleware.RBAC(admin, self), h.Transcripts.Roster)
		}
	}

	courses := protected.Group("/courses")
	{
		courses.GET("", h.Courses.List)
		courses.GET("/lecturer/:lecturerId", h.Courses.ListByLecturer)
		courses.GET("/:id", h.Courses.Get)
		courses.GET("/:id/enrollments", middleware.RBAC(admin), h.Enrollments.ListForCourse)
		courses.POST("", middleware.RBAC(admin), audit(models.AuditActionCreate, "courses"), h.Courses.Create)
		courses.PUT("/:id", middleware.RBAC(admin), audit(models.AuditActionUpdate, "courses"), h.Courses.Update)
		courses.DELETE("/:id", middleware.RBAC(admin), audit(models.AuditActionDelete, "courses"), h.Courses.Delete)
		courses.PUT("/:id/assign-lecturer/:lecturerId", middleware.RBAC(admin), audit(models.AuditActionUpdate, "courses"), h.Courses.AssignLecturer)
	}

	enrollments := protected.Group("/enrollments")
	enrollments.Use(middleware.RBAC(admin))
	{
		enrollments.PUT("/:id/grade", audit(models.AuditActionUpdate, "grades"), h.Enrollments.AssignGrade)
		enrollments.DELETE("/:id", audit(models.AuditActionDelete, "enrollments"), h.Enrollments.Remove)
	}

	adminGroup := protected.Group("/admin")
	adminGroup.Use(middleware.RBAC(admin))
	{
		adminGroup.GET("/dashboard/stats", h.Dashboard.Stats)
		if opts.ExposeMetrics {
			adminGroup.GET("/metrics", h.Metrics.Snapshot)
		}
	}
}
