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

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetail(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type moduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
}

type lessonRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

// CourseService implements course browsing and authoring.
type CourseService struct {
	courses   courseRepository
	modules   moduleRepository
	lessons   lessonRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseRepository, modules moduleRepository, lessons lessonRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, modules: modules, lessons: lessons, validator: validate, logger: logger}
}

// ScopeFilter adjusts a listing filter to what the actor may see. Anonymous
// callers and students only see published courses, teachers only their own.
func ScopeFilter(actor *models.JWTClaims, filter models.CourseFilter) models.CourseFilter {
	switch {
	case actor == nil || actor.Role == models.RoleStudent:
		filter.Status = models.CourseStatusPublished
	case actor.Role == models.RoleTeacher:
		filter.TeacherID = actor.UserID
	}
	return filter
}

// List returns courses visible to the actor. actor is nil for anonymous requests.
func (s *CourseService) List(ctx context.Context, actor *models.JWTClaims, filter models.CourseFilter) ([]models.CourseSummary, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" && filter.Status != models.CourseStatusDraft && filter.Status != models.CourseStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be draft or published")
	}

	courses, err := s.courses.List(ctx, ScopeFilter(actor, filter))
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course with its modules and lessons. Drafts are hidden from
// everyone except the owner and admins.
func (s *CourseService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.CourseDetail, error) {
	detail, err := s.courses.FindDetail(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load course")
	}
	if detail == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
	}
	if detail.Status != models.CourseStatusPublished && !canManageCourse(actor, &detail.Course) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
	}
	return detail, nil
}

// Create stores a new course owned by the actor.
func (s *CourseService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}

	course := &models.Course{
		TeacherID:   actor.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Thumbnail:   req.Thumbnail,
		Status:      req.Status,
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, internalError(err, "failed to create course")
	}
	return course, nil
}

// Update applies the supplied fields to a course the actor manages.
func (s *CourseService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	course, err := loadManagedCourse(ctx, s.courses, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Category != nil {
		course.Category = req.Category
	}
	if req.Thumbnail != nil {
		course.Thumbnail = req.Thumbnail
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Status != nil {
		course.Status = *req.Status
	}

	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, internalError(err, "failed to update course")
	}
	return course, nil
}

// Delete removes a course the actor manages along with its content.
func (s *CourseService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if _, err := loadManagedCourse(ctx, s.courses, actor, id); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return internalError(err, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

// CreateModule appends a module to a course.
func (s *CourseService) CreateModule(ctx context.Context, actor *models.JWTClaims, courseID string, req dto.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid module payload")
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}

	module := &models.Module{CourseID: courseID, Title: strings.TrimSpace(req.Title)}
	if req.OrderIndex != nil {
		module.OrderIndex = *req.OrderIndex
	}
	if err := s.modules.Create(ctx, module); err != nil {
		return nil, internalError(err, "failed to create module")
	}
	return module, nil
}

// UpdateModule changes a module's title or position.
func (s *CourseService) UpdateModule(ctx context.Context, actor *models.JWTClaims, moduleID string, req dto.UpdateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid module payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	module, err := s.loadManagedModule(ctx, actor, moduleID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		module.Title = strings.TrimSpace(*req.Title)
	}
	if req.OrderIndex != nil {
		module.OrderIndex = *req.OrderIndex
	}
	if err := s.modules.Update(ctx, module); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Module not found")
		}
		return nil, internalError(err, "failed to update module")
	}
	return module, nil
}

// DeleteModule removes a module and its lessons.
func (s *CourseService) DeleteModule(ctx context.Context, actor *models.JWTClaims, moduleID string) error {
	if _, err := s.loadManagedModule(ctx, actor, moduleID); err != nil {
		return err
	}
	if err := s.modules.Delete(ctx, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Module not found")
		}
		return internalError(err, "failed to delete module")
	}
	return nil
}

// CreateLesson adds a lesson to a module.
func (s *CourseService) CreateLesson(ctx context.Context, actor *models.JWTClaims, moduleID string, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson payload")
	}
	if _, err := s.loadManagedModule(ctx, actor, moduleID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		ModuleID:    moduleID,
		Title:       strings.TrimSpace(req.Title),
		ContentType: req.ContentType,
		ContentURL:  req.ContentURL,
		Content:     req.Content,
		Duration:    req.Duration,
	}
	if req.OrderIndex != nil {
		lesson.OrderIndex = *req.OrderIndex
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, internalError(err, "failed to create lesson")
	}
	return lesson, nil
}

// UpdateLesson applies the supplied lesson fields.
func (s *CourseService) UpdateLesson(ctx context.Context, actor *models.JWTClaims, lessonID string, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	lesson, err := s.loadManagedLesson(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		lesson.Title = strings.TrimSpace(*req.Title)
	}
	if req.ContentType != nil {
		lesson.ContentType = *req.ContentType
	}
	if req.ContentURL != nil {
		lesson.ContentURL = req.ContentURL
	}
	if req.Content != nil {
		lesson.Content = req.Content
	}
	if req.Duration != nil {
		lesson.Duration = req.Duration
	}
	if req.OrderIndex != nil {
		lesson.OrderIndex = *req.OrderIndex
	}
	if err := s.lessons.Update(ctx, lesson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Lesson not found")
		}
		return nil, internalError(err, "failed to update lesson")
	}
	return lesson, nil
}

// DeleteLesson removes a lesson.
func (s *CourseService) DeleteLesson(ctx context.Context, actor *models.JWTClaims, lessonID string) error {
	if _, err := s.loadManagedLesson(ctx, actor, lessonID); err != nil {
		return err
	}
	if err := s.lessons.Delete(ctx, lessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Lesson not found")
		}
		return internalError(err, "failed to delete lesson")
	}
	return nil
}

func (s *CourseService) loadManagedModule(ctx context.Context, actor *models.JWTClaims, moduleID string) (*models.Module, error) {
	module, err := s.modules.FindByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Module not found")
		}
		return nil, internalError(err, "failed to load module")
	}
	if _, err := loadManagedCourse(ctx, s.courses, actor, module.CourseID); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) loadManagedLesson(ctx context.Context, actor *models.JWTClaims, lessonID string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Lesson not found")
		}
		return nil, internalError(err, "failed to load lesson")
	}
	if _, err := s.loadManagedModule(ctx, actor, lesson.ModuleID); err != nil {
		return nil, err
	}
	return lesson, nil
}
