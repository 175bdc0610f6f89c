package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type assessmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id string) error
}

// AssessmentService manages quizzes and assignments attached to courses.
type AssessmentService struct {
	assessments assessmentRepository
	courses     courseFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(assessments assessmentRepository, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{assessments: assessments, courses: courses, validator: validate, logger: logger}
}

// Create adds an assessment to a course the actor manages.
func (s *AssessmentService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assessment payload")
	}
	kind := req.Type
	if kind == "" {
		kind = models.AssessmentTypeQuiz
	}
	if err := validateQuestions(kind, req.Questions); err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, req.CourseID); err != nil {
		return nil, err
	}

	assessment := &models.Assessment{
		CourseID:  req.CourseID,
		LessonID:  req.LessonID,
		Title:     strings.TrimSpace(req.Title),
		Type:      kind,
		Questions: req.Questions,
	}
	if req.Duration != nil {
		assessment.Duration = *req.Duration
	}
	if req.TotalMarks != nil {
		assessment.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		assessment.PassingMarks = *req.PassingMarks
	}

	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, internalError(err, "failed to create assessment")
	}
	return assessment, nil
}

// ListByCourse returns a course's assessments. Students never see answer keys.
func (s *AssessmentService) ListByCourse(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.Assessment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, internalError(err, "failed to load course")
	}

	assessments, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list assessments")
	}
	if !canManageCourse(actor, course) {
		for i := range assessments {
			assessments[i].Questions = assessments[i].Questions.WithoutAnswers()
		}
	}
	return assessments, nil
}

// Get returns one assessment, stripping answers unless the actor manages the course.
func (s *AssessmentService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Assessment, error) {
	assessment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, assessment.CourseID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to load course")
	}
	if !canManageCourse(actor, course) {
		assessment.Questions = assessment.Questions.WithoutAnswers()
	}
	return assessment, nil
}

// Update applies the supplied fields to an assessment the actor manages.
func (s *AssessmentService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assessment payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	assessment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, assessment.CourseID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		assessment.Title = strings.TrimSpace(*req.Title)
	}
	if req.LessonID != nil {
		assessment.LessonID = req.LessonID
	}
	if req.Type != nil {
		assessment.Type = *req.Type
	}
	if req.Duration != nil {
		assessment.Duration = *req.Duration
	}
	if req.TotalMarks != nil {
		assessment.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		assessment.PassingMarks = *req.PassingMarks
	}
	if req.Questions != nil {
		assessment.Questions = *req.Questions
	}
	if err := validateQuestions(assessment.Type, assessment.Questions); err != nil {
		return nil, err
	}

	if err := s.assessments.Update(ctx, assessment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Assessment not found")
		}
		return nil, internalError(err, "failed to update assessment")
	}
	return assessment, nil
}

// Delete removes an assessment the actor manages.
func (s *AssessmentService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	assessment, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, assessment.CourseID); err != nil {
		return err
	}
	if err := s.assessments.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Assessment not found")
		}
		return internalError(err, "failed to delete assessment")
	}
	return nil
}

func (s *AssessmentService) find(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.assessments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Assessment not found")
		}
		return nil, internalError(err, "failed to load assessment")
	}
	return assessment, nil
}

// validateQuestions requires at least one question on a quiz and unique,
// non-empty ids so answers map to exactly one question.
func validateQuestions(kind models.AssessmentType, questions models.Questions) error {
	if kind == models.AssessmentTypeQuiz && len(questions) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "a quiz needs at least one question")
	}
	seen := make(map[models.QuestionID]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "every question needs an id")
		}
		if _, dup := seen[q.ID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate question id "+string(q.ID))
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}
