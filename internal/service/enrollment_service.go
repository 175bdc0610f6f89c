package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/pkg/database"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateProgress(ctx context.Context, id string, progress float64) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	Delete(ctx context.Context, id string) error
	MarkLessonComplete(ctx context.Context, enrollmentID, lessonID string) error
	CountCompletedLessons(ctx context.Context, enrollmentID, courseID string) (int, error)
}

type lessonCounter interface {
	CourseIDFor(ctx context.Context, lessonID string) (string, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

type dashboardInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...string)
}

// EnrollmentService handles enrollment and progress tracking.
type EnrollmentService struct {
	enrollments enrollmentRepository
	courses     courseFinder
	lessons     lessonCounter
	dashboards  dashboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService. dashboards may be nil.
func NewEnrollmentService(enrollments enrollmentRepository, courses courseFinder, lessons lessonCounter, dashboards dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		lessons:     lessons,
		dashboards:  dashboards,
		validator:   validate,
		logger:      logger,
	}
}

// Enroll creates an enrollment for the calling student in a published course.
func (s *EnrollmentService) Enroll(ctx context.Context, actor *models.JWTClaims, req dto.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	if course.Status != models.CourseStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Course is not open for enrollment")
	}

	exists, err := s.enrollments.Exists(ctx, actor.UserID, course.ID)
	if err != nil {
		return nil, internalError(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{StudentID: actor.UserID, CourseID: course.ID}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		// Two concurrent requests can both pass the existence check.
		if database.IsUniqueViolation(err) {
			return nil, appErrors.ErrAlreadyEnrolled
		}
		return nil, internalError(err, "failed to create enrollment")
	}

	s.invalidate(ctx, actor.UserID, course.TeacherID)
	return enrollment, nil
}

// UpdateProgress sets progress on an enrollment owned by the actor.
// Reaching 100 stamps completed_at, dropping below clears it.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateProgressRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "progress is required")
	}
	progress := *req.Progress
	if progress < 0 || progress > models.ProgressComplete {
		return nil, appErrors.Clone(appErrors.ErrValidation, "progress must be between 0 and 100")
	}

	enrollment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.applyProgress(ctx, enrollment, progress)
}

// CompleteLesson marks a lesson done and derives progress from the share of
// completed lessons in the course.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, actor *models.JWTClaims, id, lessonID string) (*models.Enrollment, error) {
	enrollment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	courseID, err := s.lessons.CourseIDFor(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Lesson not found")
		}
		return nil, internalError(err, "failed to load lesson")
	}
	if courseID != enrollment.CourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson does not belong to the enrolled course")
	}

	if err := s.enrollments.MarkLessonComplete(ctx, enrollment.ID, lessonID); err != nil {
		return nil, internalError(err, "failed to record lesson completion")
	}
	total, err := s.lessons.CountByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return nil, internalError(err, "failed to count lessons")
	}
	done, err := s.enrollments.CountCompletedLessons(ctx, enrollment.ID, enrollment.CourseID)
	if err != nil {
		return nil, internalError(err, "failed to count completed lessons")
	}

	return s.applyProgress(ctx, enrollment, float64(percentOf(done, total)))
}

func (s *EnrollmentService) applyProgress(ctx context.Context, enrollment *models.Enrollment, progress float64) (*models.Enrollment, error) {
	updated, err := s.enrollments.UpdateProgress(ctx, enrollment.ID, progress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		return nil, internalError(err, "failed to update progress")
	}
	s.invalidate(ctx, enrollment.StudentID)
	return updated, nil
}

// ListMine returns the actor's enrollments with course summaries.
func (s *EnrollmentService) ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, internalError(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListByCourse returns the students enrolled in a course the actor manages.
func (s *EnrollmentService) ListByCourse(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.EnrollmentDetail, error) {
	if _, err := loadManagedCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, internalError(err, "failed to list course enrollments")
	}
	return enrollments, nil
}

// Delete removes an enrollment owned by the actor.
func (s *EnrollmentService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	enrollment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.enrollments.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		return internalError(err, "failed to delete enrollment")
	}
	s.invalidate(ctx, enrollment.StudentID)
	return nil
}

func (s *EnrollmentService) loadOwned(ctx context.Context, actor *models.JWTClaims, id string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		return nil, internalError(err, "failed to load enrollment")
	}
	if !actor.IsAdmin() && enrollment.StudentID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Not authorized to access this enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) invalidate(ctx context.Context, userIDs ...string) {
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, userIDs...)
	}
}
