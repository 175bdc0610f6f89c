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

const lessonColumns = `id, module_id, title, content_type, content_url, content, duration, order_index, created_at`

// LessonRepository handles persistence of lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindByID returns a lesson or sql.ErrNoRows.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &lesson, nil
}

// CourseIDFor resolves the course owning a lesson.
func (r *LessonRepository) CourseIDFor(ctx context.Context, lessonID string) (string, error) {
	const query = `SELECT m.course_id FROM lessons l JOIN modules m ON m.id = l.module_id WHERE l.id = $1`
	var courseID string
	if err := r.db.GetContext(ctx, &courseID, query, lessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("resolve lesson course: %w", err)
	}
	return courseID, nil
}

// CountByCourse returns the number of lessons across a course's modules.
func (r *LessonRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lessons l JOIN modules m ON m.id = l.module_id WHERE m.course_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, courseID); err != nil {
		return 0, fmt.Errorf("count course lessons: %w", err)
	}
	return total, nil
}

// Create inserts a lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}
	if lesson.ContentType == "" {
		lesson.ContentType = models.ContentTypeVideo
	}
	const query = `INSERT INTO lessons (id, module_id, title, content_type, content_url, content, duration, order_index, created_at)
        VALUES (:id, :module_id, :title, :content_type, :content_url, :content, :duration, :order_index, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update persists every mutable lesson field.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	const query = `UPDATE lessons SET title = :title, content_type = :content_type, content_url = :content_url,
        content = :content, duration = :duration, order_index = :order_index WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lesson)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return expectAffected(res, "update lesson")
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return expectAffected(res, "delete lesson")
}
