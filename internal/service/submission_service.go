package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type submissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.SubmissionDetail, error)
	Grade(ctx context.Context, id string, score float64, feedback *string) (*models.Submission, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.SubmissionDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.SubmissionDetail, error)
}

type assessmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
}

// SubmissionService handles submitting, auto-grading and manual grading.
type SubmissionService struct {
	submissions submissionRepository
	assessments assessmentFinder
	courses     courseFinder
	dashboards  dashboardInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService constructs a SubmissionService. dashboards may be nil.
func NewSubmissionService(submissions submissionRepository, assessments assessmentFinder, courses courseFinder, dashboards dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		submissions: submissions,
		assessments: assessments,
		courses:     courses,
		dashboards:  dashboards,
		validator:   validate,
		logger:      logger,
	}
}

// WithMetrics attaches a metrics sink for quiz scores.
func (s *SubmissionService) WithMetrics(metrics *MetricsService) *SubmissionService {
	s.metrics = metrics
	return s
}

// Submit stores the actor's answers. Quizzes are scored immediately; other
// assessment types stay pending until a teacher grades them.
func (s *SubmissionService) Submit(ctx context.Context, actor *models.JWTClaims, req dto.SubmitAssessmentRequest) (*dto.SubmissionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid submission payload")
	}

	assessment, err := s.loadAssessment(ctx, req.AssessmentID)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		StudentID:    actor.UserID,
		AssessmentID: assessment.ID,
		Answers:      req.Answers,
	}

	var passed *bool
	if assessment.Type == models.AssessmentTypeQuiz {
		result, err := ScoreQuiz(assessment.Questions, req.Answers, assessment.PassThreshold())
		if err != nil {
			return nil, err
		}
		score := float64(result.Score)
		submission.Score = &score
		passed = &result.Passed
		s.metrics.ObserveQuizScore(result.Score)
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, internalError(err, "failed to save submission")
	}

	s.logger.Debug("submission stored",
		zap.String("submission_id", submission.ID),
		zap.String("assessment_id", assessment.ID),
		zap.String("status", string(submission.Status)),
	)
	s.invalidate(ctx, actor.UserID)
	return &dto.SubmissionResult{Submission: submission, Score: submission.Score, Passed: passed}, nil
}

// Grade records a manual grade on a submission in a course the actor manages.
func (s *SubmissionService) Grade(ctx context.Context, actor *models.JWTClaims, id string, req dto.GradeSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "Grade is required")
	}

	existing, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Submission not found")
		}
		return nil, internalError(err, "failed to load submission")
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, existing.CourseID); err != nil {
		return nil, err
	}

	graded, err := s.submissions.Grade(ctx, id, *req.Grade, req.Feedback)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Submission not found")
		}
		return nil, internalError(err, "failed to grade submission")
	}
	s.invalidate(ctx, graded.StudentID, actor.UserID)
	return graded, nil
}

// ListByAssessment returns every submission for an assessment the actor manages.
func (s *SubmissionService) ListByAssessment(ctx context.Context, actor *models.JWTClaims, assessmentID string) ([]models.SubmissionDetail, error) {
	if _, err := s.loadManagedAssessment(ctx, actor, assessmentID); err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, internalError(err, "failed to list submissions")
	}
	return submissions, nil
}

// ListMine returns the actor's own submissions.
func (s *SubmissionService) ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.SubmissionDetail, error) {
	submissions, err := s.submissions.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, internalError(err, "failed to list submissions")
	}
	return submissions, nil
}

func (s *SubmissionService) loadAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.assessments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Assessment not found")
		}
		return nil, internalError(err, "failed to load assessment")
	}
	return assessment, nil
}

func (s *SubmissionService) loadManagedAssessment(ctx context.Context, actor *models.JWTClaims, id string) (*models.Assessment, error) {
	assessment, err := s.loadAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, assessment.CourseID); err != nil {
		return nil, err
	}
	return assessment, nil
}

func (s *SubmissionService) invalidate(ctx context.Context, userIDs ...string) {
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, userIDs...)
	}
}
