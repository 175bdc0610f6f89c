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

const assessmentColumns = `id, course_id, lesson_id, title, type, duration, total_marks, passing_marks, questions, created_at`

// AssessmentRepository handles persistence of quizzes and assignments.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// FindByID returns an assessment or sql.ErrNoRows.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assessment: %w", err)
	}
	return &assessment, nil
}

// ListByCourse returns a course's assessments, oldest first.
func (r *AssessmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE course_id = $1 ORDER BY created_at ASC`
	assessments := make([]models.Assessment, 0)
	if err := r.db.SelectContext(ctx, &assessments, query, courseID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// Create inserts an assessment, applying the column defaults for unset numbers.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}
	if assessment.Type == "" {
		assessment.Type = models.AssessmentTypeQuiz
	}
	if assessment.Duration <= 0 {
		assessment.Duration = models.DefaultAssessmentDuration
	}
	if assessment.TotalMarks <= 0 {
		assessment.TotalMarks = models.DefaultTotalMarks
	}
	if assessment.PassingMarks <= 0 {
		assessment.PassingMarks = models.DefaultPassingMarks
	}
	if assessment.Questions == nil {
		assessment.Questions = models.Questions{}
	}

	const query = `INSERT INTO assessments (id, course_id, lesson_id, title, type, duration, total_marks, passing_marks, questions, created_at)
        VALUES (:id, :course_id, :lesson_id, :title, :type, :duration, :total_marks, :passing_marks, :questions, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// Update persists every mutable assessment field.
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	const query = `UPDATE assessments SET lesson_id = :lesson_id, title = :title, type = :type, duration = :duration,
        total_marks = :total_marks, passing_marks = :passing_marks, questions = :questions WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, assessment)
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	return expectAffected(res, "update assessment")
}

// Delete removes an assessment and its submissions.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return expectAffected(res, "delete assessment")
}
