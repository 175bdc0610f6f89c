package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduvillage-api/internal/models"
)

const enrollmentColumns = `e.id, e.student_id, e.course_id, e.progress, e.enrolled_at, e.completed_at`

// EnrollmentRepository handles persistence of enrollments and lesson completions.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// Exists reports whether the student already has an enrollment for the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// Create inserts a new enrollment with zero progress. A concurrent duplicate
// surfaces as the enrollments_student_course_key unique violation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, progress, enrolled_at)
        VALUES (:id, :student_id, :course_id, :progress, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateProgress stores progress and sets or clears completed_at in the same
// statement. Returns sql.ErrNoRows when the enrollment does not exist.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress float64) (*models.Enrollment, error) {
	const query = `UPDATE enrollments e
        SET progress = $1,
            completed_at = CASE WHEN $1 >= 100 THEN NOW() ELSE NULL END
        WHERE e.id = $2
        RETURNING ` + enrollmentColumns
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, progress, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update enrollment progress: %w", err)
	}
	return &enrollment, nil
}

// ListByStudent returns a student's enrollments with course summary, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	query := `SELECT ` + enrollmentColumns + `, c.title AS course_title, c.thumbnail AS course_thumbnail,
        c.category AS course_category, u.name AS teacher_name
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        JOIN users u ON u.id = c.teacher_id
        WHERE e.student_id = $1
        ORDER BY e.enrolled_at DESC`
	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByCourse returns a course's enrollments with student info.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	query := `SELECT ` + enrollmentColumns + `, u.name AS student_name, u.email AS student_email
        FROM enrollments e
        JOIN users u ON u.id = e.student_id
        WHERE e.course_id = $1
        ORDER BY e.enrolled_at DESC`
	enrollments := make([]models.EnrollmentDetail, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return expectAffected(res, "delete enrollment")
}

// MarkLessonComplete records a lesson completion; repeats are no-ops.
func (r *EnrollmentRepository) MarkLessonComplete(ctx context.Context, enrollmentID, lessonID string) error {
	const query = `INSERT INTO enrollment_lesson_completions (enrollment_id, lesson_id, completed_at)
        VALUES ($1, $2, $3) ON CONFLICT (enrollment_id, lesson_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, lessonID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark lesson complete: %w", err)
	}
	return nil
}

// CountCompletedLessons counts completions that still belong to the course.
func (r *EnrollmentRepository) CountCompletedLessons(ctx context.Context, enrollmentID, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollment_lesson_completions lc
        JOIN lessons l ON l.id = lc.lesson_id
        JOIN modules m ON m.id = l.module_id
        WHERE lc.enrollment_id = $1 AND m.course_id = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, enrollmentID, courseID); err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return total, nil
}
