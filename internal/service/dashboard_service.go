package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type dashboardRepository interface {
	StudentSummary(ctx context.Context, studentID string) (*models.StudentDashboard, error)
	TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherDashboard, error)
	AdminSummary(ctx context.Context) (*models.AdminDashboard, error)
}

const adminDashboardKey = "dashboard:admin"

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the per-role dashboards, caching them when enabled.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService. A nil cache disables caching.
func NewDashboardService(repo dashboardRepository, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// ForUser returns the dashboard for the actor's role and whether it came from cache.
func (s *DashboardService) ForUser(ctx context.Context, actor *models.JWTClaims) (*dto.DashboardResponse, bool, error) {
	if actor == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	key := dashboardKey(actor)
	var cached dto.DashboardResponse
	if s.cache.Lookup(ctx, key, &cached) {
		return &cached, true, nil
	}

	resp := &dto.DashboardResponse{Role: actor.Role}
	generatedAt := s.now().UTC()
	switch actor.Role {
	case models.RoleStudent:
		summary, err := s.repo.StudentSummary(ctx, actor.UserID)
		if err != nil {
			return nil, false, internalError(err, "failed to build student dashboard")
		}
		summary.GeneratedAt = generatedAt
		resp.Student = summary
	case models.RoleTeacher:
		summary, err := s.repo.TeacherSummary(ctx, actor.UserID)
		if err != nil {
			return nil, false, internalError(err, "failed to build teacher dashboard")
		}
		summary.GeneratedAt = generatedAt
		resp.Teacher = summary
	case models.RoleAdmin:
		summary, err := s.repo.AdminSummary(ctx)
		if err != nil {
			return nil, false, internalError(err, "failed to build admin dashboard")
		}
		summary.GeneratedAt = generatedAt
		resp.Admin = summary
	default:
		return nil, false, appErrors.ErrForbidden
	}

	s.logger.Debug("dashboard built", zap.String("role", string(actor.Role)), zap.String("user_id", actor.UserID))
	s.cache.Store(ctx, key, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// Invalidate drops cached dashboards for the given users and the admin overview.
func (s *DashboardService) Invalidate(ctx context.Context, userIDs ...string) {
	patterns := make([]string, 0, len(userIDs)+1)
	for _, id := range userIDs {
		if id != "" {
			patterns = append(patterns, "dashboard:*:"+id)
		}
	}
	s.cache.Invalidate(ctx, append(patterns, adminDashboardKey)...)
}

func dashboardKey(actor *models.JWTClaims) string {
	if actor.Role == models.RoleAdmin {
		return adminDashboardKey
	}
	return fmt.Sprintf("dashboard:%s:%s", actor.Role, actor.UserID)
}
