package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/handler"
	"github.com/noah-isme/eduvillage-api/internal/middleware"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/internal/service"
	"github.com/noah-isme/eduvillage-api/pkg/config"
	"github.com/noah-isme/eduvillage-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/eduvillage-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/eduvillage-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Courses     *handler.CourseHandler
	Assessments *handler.AssessmentHandler
	Enrollments *handler.EnrollmentHandler
	Submissions *handler.SubmissionHandler
	Dashboard   *handler.DashboardHandler
	Uploads     *handler.UploadHandler
	Metrics     *handler.MetricsHandler
}

// Deps carries what the router needs besides handlers.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Tokens   middleware.TokenValidator
	Audit    middleware.AuditRecorder
	Metrics  *service.MetricsService
	Handlers Handlers
}

// NewRouter builds the gin engine with the global middleware chain and all routes.
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.WithResponseMeta())

	h := deps.Handlers
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.Uploads.Dir != "" {
		r.Static("/uploads", cfg.Uploads.Dir)
	}

	api := r.Group(cfg.APIPrefix)
	requireAuth := middleware.JWT(deps.Tokens)
	optionalAuth := middleware.OptionalJWT(deps.Tokens)
	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)
	student := middleware.RequireRoles(models.RoleStudent)
	learner := middleware.RequireRoles(models.RoleStudent, models.RoleAdmin)
	audit := func(action, resource, idParam string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, logr, action, resource, idParam)
	}

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", requireAuth, h.Auth.Me)
	auth.PUT("/profile", requireAuth, audit(models.AuditActionProfileUpdate, "user", ""), h.Auth.UpdateProfile)

	courses := api.Group("/courses")
	courses.GET("", optionalAuth, h.Courses.List)
	courses.GET("/:id", optionalAuth, h.Courses.Get)
	courses.POST("", requireAuth, staff, h.Courses.Create)
	courses.PUT("/:id", requireAuth, staff, h.Courses.Update)
	courses.DELETE("/:id", requireAuth, staff, audit(models.AuditActionCourseDelete, "course", "id"), h.Courses.Delete)
	courses.POST("/:id/modules", requireAuth, staff, h.Courses.CreateModule)
	courses.PUT("/modules/:moduleId", requireAuth, staff, h.Courses.UpdateModule)
	courses.DELETE("/modules/:moduleId", requireAuth, staff, h.Courses.DeleteModule)
	courses.POST("/modules/:moduleId/lessons", requireAuth, staff, h.Courses.CreateLesson)
	courses.PUT("/lessons/:lessonId", requireAuth, staff, h.Courses.UpdateLesson)
	courses.DELETE("/lessons/:lessonId", requireAuth, staff, h.Courses.DeleteLesson)

	assessments := api.Group("/assessments")
	assessments.POST("", requireAuth, staff, h.Assessments.Create)
	assessments.GET("/course/:courseId", optionalAuth, h.Assessments.ListByCourse)
	assessments.GET("/:id", optionalAuth, h.Assessments.Get)
	assessments.PUT("/:id", requireAuth, staff, h.Assessments.Update)
	assessments.DELETE("/:id", requireAuth, staff, h.Assessments.Delete)

	enrollments := api.Group("/enrollments", requireAuth)
	enrollments.POST("", student, audit(models.AuditActionEnroll, "enrollment", ""), h.Enrollments.Enroll)
	enrollments.GET("", h.Enrollments.ListMine)
	enrollments.GET("/course/:courseId", staff, h.Enrollments.ListByCourse)
	enrollments.PUT("/:id/progress", learner, h.Enrollments.UpdateProgress)
	enrollments.POST("/:id/lessons/:lessonId/complete", student, h.Enrollments.CompleteLesson)
	enrollments.DELETE("/:id", h.Enrollments.Delete)

	submissions := api.Group("/submissions", requireAuth)
	submissions.POST("", student, h.Submissions.Submit)
	submissions.GET("/student", h.Submissions.ListMine)
	submissions.PUT("/:id/grade", staff, audit(models.AuditActionGrade, "submission", "id"), h.Submissions.Grade)
	submissions.GET("/assessment/:id", staff, h.Submissions.ListByAssessment)
	submissions.GET("/assessment/:id/export", staff, h.Submissions.Export)

	api.GET("/dashboard", requireAuth, h.Dashboard.Get)

	uploads := api.Group("/upload", requireAuth)
	uploads.POST("", staff, h.Uploads.Upload)
	uploads.POST("/multiple", staff, h.Uploads.UploadMultiple)
	uploads.GET("/download", h.Uploads.Download)
	uploads.DELETE("/:filename", staff, h.Uploads.Delete)

	return r
}
