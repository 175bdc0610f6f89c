package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduvillage-api/internal/models"
)

// DashboardRepository aggregates the per-role dashboard figures.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// StudentSummary aggregates a student's enrollments and submissions.
func (r *DashboardRepository) StudentSummary(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	const query = `SELECT
            (SELECT COUNT(*) FROM enrollments WHERE student_id = $1) AS enrolled_courses,
            (SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND completed_at IS NOT NULL) AS completed_courses,
            (SELECT COALESCE(AVG(progress), 0) FROM enrollments WHERE student_id = $1) AS average_progress,
            (SELECT COUNT(*) FROM submissions WHERE student_id = $1) AS submissions,
            (SELECT AVG(score) FROM submissions WHERE student_id = $1 AND score IS NOT NULL) AS average_score`
	var summary models.StudentDashboard
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		return nil, fmt.Errorf("student dashboard: %w", err)
	}
	return &summary, nil
}

// TeacherSummary aggregates a teacher's own courses.
func (r *DashboardRepository) TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherDashboard, error) {
	const query = `SELECT
            (SELECT COUNT(*) FROM courses WHERE teacher_id = $1) AS total_courses,
            (SELECT COUNT(*) FROM courses WHERE teacher_id = $1 AND status = 'published') AS published_courses,
            (SELECT COUNT(*) FROM courses WHERE teacher_id = $1 AND status = 'draft') AS draft_courses,
            (SELECT COUNT(*) FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.teacher_id = $1) AS total_enrollments,
            (SELECT COUNT(*) FROM submissions s
                JOIN assessments a ON a.id = s.assessment_id
                JOIN courses c ON c.id = a.course_id
                WHERE c.teacher_id = $1 AND s.status = 'pending') AS pending_submissions`
	var summary models.TeacherDashboard
	if err := r.db.GetContext(ctx, &summary, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher dashboard: %w", err)
	}
	return &summary, nil
}

// AdminSummary aggregates platform-wide totals.
func (r *DashboardRepository) AdminSummary(ctx context.Context) (*models.AdminDashboard, error) {
	const query = `SELECT
            (SELECT COUNT(*) FROM users WHERE role = 'student') AS students,
            (SELECT COUNT(*) FROM users WHERE role = 'teacher') AS teachers,
            (SELECT COUNT(*) FROM users WHERE role = 'admin') AS admins,
            (SELECT COUNT(*) FROM courses WHERE status = 'published') AS published_courses,
            (SELECT COUNT(*) FROM courses WHERE status = 'draft') AS draft_courses,
            (SELECT COUNT(*) FROM enrollments) AS enrollments,
            (SELECT COUNT(*) FROM submissions) AS submissions`
	var summary models.AdminDashboard
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}
	return &summary, nil
}
