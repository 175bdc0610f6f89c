package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// canManageCourse reports whether the actor owns the course or is an admin.
func canManageCourse(actor *models.JWTClaims, course *models.Course) bool {
	if actor == nil || course == nil {
		return false
	}
	return actor.IsAdmin() || (actor.Role == models.RoleTeacher && course.TeacherID == actor.UserID)
}

// loadManagedCourse fetches a course and checks that the actor may change it.
func loadManagedCourse(ctx context.Context, courses courseFinder, actor *models.JWTClaims, courseID string) (*models.Course, error) {
	course, err := courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course")
	}
	if !canManageCourse(actor, course) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to modify this course")
	}
	return course, nil
}

func validationError(err error, message string) error {
	return appErrors.WrapAs(err, appErrors.ErrValidation, message)
}

func internalError(err error, message string) error {
	return appErrors.WrapAs(err, appErrors.ErrInternal, message)
}
