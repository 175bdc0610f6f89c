package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/eduvillage-api/api/swagger"
	"github.com/noah-isme/eduvillage-api/internal/handler"
	"github.com/noah-isme/eduvillage-api/internal/repository"
	"github.com/noah-isme/eduvillage-api/internal/server"
	"github.com/noah-isme/eduvillage-api/internal/service"
	"github.com/noah-isme/eduvillage-api/pkg/cache"
	"github.com/noah-isme/eduvillage-api/pkg/config"
	"github.com/noah-isme/eduvillage-api/pkg/database"
	"github.com/noah-isme/eduvillage-api/pkg/logger"
	"github.com/noah-isme/eduvillage-api/pkg/storage"
)

// @title EduVillage API
// @version 1.0.0
// @description Learning management API: courses, enrollments, assessments and dashboards.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, "eduvillage")
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	users := repository.NewUserRepository(db)
	audits := repository.NewAuditRepository(db)
	courses := repository.NewCourseRepository(db)
	modules := repository.NewModuleRepository(db)
	lessons := repository.NewLessonRepository(db)
	assessments := repository.NewAssessmentRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("prepare upload dir: %w", err)
	}

	authSvc := service.NewAuthService(users, audits, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	dashboardSvc := service.NewDashboardService(repository.NewDashboardRepository(db), cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})
	courseSvc := service.NewCourseService(courses, modules, lessons, validate, logr)
	assessmentSvc := service.NewAssessmentService(assessments, courses, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollments, courses, lessons, dashboardSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissions, assessments, courses, dashboardSvc, validate, logr).WithMetrics(metrics)
	exportSvc := service.NewExportService(submissionSvc, assessments, logr)
	uploadSvc := service.NewUploadService(store, logr, service.UploadServiceConfig{
		MaxFileSize:       cfg.Uploads.MaxFileSizeBytes,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
		MaxFiles:          cfg.Uploads.MaxFiles,
	})

	router := server.NewRouter(server.Deps{
		Config:  cfg,
		Logger:  logr,
		Tokens:  authSvc,
		Audit:   audits,
		Metrics: metrics,
		Handlers: server.Handlers{
			Auth:        handler.NewAuthHandler(authSvc),
			Courses:     handler.NewCourseHandler(courseSvc),
			Assessments: handler.NewAssessmentHandler(assessmentSvc),
			Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
			Submissions: handler.NewSubmissionHandler(submissionSvc, exportSvc),
			Dashboard:   handler.NewDashboardHandler(dashboardSvc),
			Uploads:     handler.NewUploadHandler(uploadSvc, logr),
			Metrics:     handler.NewMetricsHandler(metrics, db),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
