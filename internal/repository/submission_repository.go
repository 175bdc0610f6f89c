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

const submissionColumns = `s.id, s.student_id, s.assessment_id, s.answers, s.score, s.status, s.feedback, s.submitted_at, s.graded_at`

// SubmissionRepository handles persistence of assessment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission. Status follows the presence of a score.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	if submission.Answers == nil {
		submission.Answers = models.Answers{}
	}
	if submission.Score != nil {
		submission.Status = models.SubmissionStatusGraded
		graded := submission.SubmittedAt
		submission.GradedAt = &graded
	} else {
		submission.Status = models.SubmissionStatusPending
	}

	const query = `INSERT INTO submissions (id, student_id, assessment_id, answers, score, status, feedback, submitted_at, graded_at)
        VALUES (:id, :student_id, :assessment_id, :answers, :score, :status, :feedback, :submitted_at, :graded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// FindByID returns a submission joined with its assessment and course.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	query := `SELECT ` + submissionColumns + `, a.title AS assessment_title, a.course_id, a.passing_marks
        FROM submissions s
        JOIN assessments a ON a.id = s.assessment_id
        WHERE s.id = $1`
	var submission models.SubmissionDetail
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &submission, nil
}

// Grade stores a manual grade. No range check happens here.
func (r *SubmissionRepository) Grade(ctx context.Context, id string, score float64, feedback *string) (*models.Submission, error) {
	query := `UPDATE submissions s
        SET score = $1, feedback = $2, status = 'graded', graded_at = NOW()
        WHERE s.id = $3
        RETURNING ` + submissionColumns
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, score, feedback, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("grade submission: %w", err)
	}
	return &submission, nil
}

// ListByAssessment returns submissions for an assessment with student info, newest first.
func (r *SubmissionRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.SubmissionDetail, error) {
	query := `SELECT ` + submissionColumns + `, u.name AS student_name, u.email AS student_email
        FROM submissions s
        JOIN users u ON u.id = s.student_id
        WHERE s.assessment_id = $1
        ORDER BY s.submitted_at DESC`
	submissions := make([]models.SubmissionDetail, 0)
	if err := r.db.SelectContext(ctx, &submissions, query, assessmentID); err != nil {
		return nil, fmt.Errorf("list assessment submissions: %w", err)
	}
	return submissions, nil
}

// ListByStudent returns a student's submissions with assessment and course titles.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SubmissionDetail, error) {
	query := `SELECT ` + submissionColumns + `, a.title AS assessment_title, a.passing_marks,
        c.id AS course_id, c.title AS course_title
        FROM submissions s
        JOIN assessments a ON a.id = s.assessment_id
        JOIN courses c ON c.id = a.course_id
        WHERE s.student_id = $1
        ORDER BY s.submitted_at DESC`
	submissions := make([]models.SubmissionDetail, 0)
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student submissions: %w", err)
	}
	return submissions, nil
}
