package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduvillage-api/internal/models"
)

const courseColumns = `c.id, c.teacher_id, c.title, c.description, c.category, c.thumbnail, c.price, c.status, c.created_at, c.updated_at`

// likeEscaper makes a search term match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CourseRepository provides database access for courses and their aggregated content.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching every non-empty filter, newest first.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error) {
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("c.category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf(`(c.title ILIKE $%d ESCAPE '\' OR c.description ILIKE $%d ESCAPE '\')`, len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)))
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + courseColumns + `, u.name AS teacher_name,
        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id) AS enrollment_count,
        (SELECT COUNT(*) FROM modules m WHERE m.course_id = c.id) AS module_count
        FROM courses c
        JOIN users u ON u.id = c.teacher_id` + clause + `
        ORDER BY c.created_at DESC`

	courses := make([]models.CourseSummary, 0)
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns the bare course row or sql.ErrNoRows.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// FindDetail loads a course with its modules and lessons ordered by
// (order_index, created_at). A missing course yields (nil, nil).
func (r *CourseRepository) FindDetail(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := `SELECT ` + courseColumns + `, u.name AS teacher_name, u.email AS teacher_email
        FROM courses c
        JOIN users u ON u.id = c.teacher_id
        WHERE c.id = $1`
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find course detail: %w", err)
	}

	const modulesQuery = `SELECT id, course_id, title, order_index, created_at FROM modules
        WHERE course_id = $1 ORDER BY order_index ASC, created_at ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, modulesQuery, id); err != nil {
		return nil, fmt.Errorf("list course modules: %w", err)
	}

	const lessonsQuery = `SELECT l.id, l.module_id, l.title, l.content_type, l.content_url, l.content, l.duration, l.order_index, l.created_at
        FROM lessons l
        JOIN modules m ON m.id = l.module_id
        WHERE m.course_id = $1
        ORDER BY l.order_index ASC, l.created_at ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, lessonsQuery, id); err != nil {
		return nil, fmt.Errorf("list course lessons: %w", err)
	}

	detail.Modules = assembleModules(modules, lessons)
	return &detail, nil
}

// assembleModules groups lessons under their modules. Ordering is enforced here
// too so the nested shape never depends on row order.
func assembleModules(modules []models.Module, lessons []models.Lesson) []models.ModuleWithLessons {
	sort.SliceStable(modules, func(i, j int) bool {
		return orderedBefore(modules[i].OrderIndex, modules[i].CreatedAt, modules[j].OrderIndex, modules[j].CreatedAt)
	})
	sort.SliceStable(lessons, func(i, j int) bool {
		return orderedBefore(lessons[i].OrderIndex, lessons[i].CreatedAt, lessons[j].OrderIndex, lessons[j].CreatedAt)
	})

	byModule := make(map[string][]models.Lesson, len(modules))
	for _, lesson := range lessons {
		byModule[lesson.ModuleID] = append(byModule[lesson.ModuleID], lesson)
	}

	out := make([]models.ModuleWithLessons, 0, len(modules))
	for _, module := range modules {
		nested := byModule[module.ID]
		if nested == nil {
			nested = []models.Lesson{}
		}
		out = append(out, models.ModuleWithLessons{Module: module, Lessons: nested})
	}
	return out
}

func orderedBefore(aIdx int, aAt time.Time, bIdx int, bAt time.Time) bool {
	if aIdx != bIdx {
		return aIdx < bIdx
	}
	return aAt.Before(bAt)
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = models.CourseStatusDraft
	}

	const query = `INSERT INTO courses (id, teacher_id, title, description, category, thumbnail, price, status, created_at, updated_at)
        VALUES (:id, :teacher_id, :title, :description, :category, :thumbnail, :price, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update persists all mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, category = :category,
        thumbnail = :thumbnail, price = :price, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res, "update course")
}

// Delete removes a course; modules, lessons, assessments and enrollments cascade.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(res, "delete course")
}

// expectAffected maps a zero-row write to sql.ErrNoRows.
func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
