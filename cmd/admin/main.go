package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/repository"
	"github.com/noah-isme/eduvillage-api/internal/service"
	"github.com/noah-isme/eduvillage-api/pkg/config"
	"github.com/noah-isme/eduvillage-api/pkg/database"
	"github.com/noah-isme/eduvillage-api/pkg/logger"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)

	cli := commandLine{
		migrate: func(command string, args ...string) error {
			return database.Migrate(db.DB, command, args...)
		},
		admins: service.NewAuthService(users, repository.NewAuditRepository(db), validate, logr, service.AuthConfig{
			Secret: cfg.JWT.Secret,
			Expiry: cfg.JWT.Expiration,
			Issuer: cfg.JWT.Issuer,
		}),
		seeder: &courseSeeder{
			users:       users,
			courses:     service.NewCourseService(courses, repository.NewModuleRepository(db), repository.NewLessonRepository(db), validate, logr),
			assessments: service.NewAssessmentService(repository.NewAssessmentRepository(db), courses, validate, logr),
		},
		out: os.Stdout,
	}
	if err := cli.run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logr.Error("admin command failed", zap.Error(err))
		}
		_ = logr.Sync()
		os.Exit(1)
	}
}
