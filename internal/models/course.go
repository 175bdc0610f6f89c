package models

import "time"

// CourseStatus is the publication state of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
)

// ContentType describes how a lesson is delivered.
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeText  ContentType = "text"
	ContentTypePDF   ContentType = "pdf"
)

// Course is a teacher-owned container of ordered modules.
type Course struct {
	ID          string       `db:"id" json:"id"`
	TeacherID   string       `db:"teacher_id" json:"teacher_id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description,omitempty"`
	Category    *string      `db:"category" json:"category,omitempty"`
	Thumbnail   *string      `db:"thumbnail" json:"thumbnail,omitempty"`
	Price       float64      `db:"price" json:"price"`
	Status      CourseStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseSummary is a listing row with owner and counters.
type CourseSummary struct {
	Course
	TeacherName     string `db:"teacher_name" json:"teacher_name"`
	EnrollmentCount int    `db:"enrollment_count" json:"enrollment_count"`
	ModuleCount     int    `db:"module_count" json:"module_count"`
}

// CourseDetail is the aggregated course with its ordered modules and lessons.
type CourseDetail struct {
	Course
	TeacherName  string              `db:"teacher_name" json:"teacher_name"`
	TeacherEmail string              `db:"teacher_email" json:"teacher_email"`
	Modules      []ModuleWithLessons `db:"-" json:"modules"`
}

// LessonCount returns the number of lessons across all modules.
func (d *CourseDetail) LessonCount() int {
	total := 0
	for _, m := range d.Modules {
		total += len(m.Lessons)
	}
	return total
}

// Module is an ordered section of a course.
type Module struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Title      string    `db:"title" json:"title"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ModuleWithLessons nests a module's ordered lessons.
type ModuleWithLessons struct {
	Module
	Lessons []Lesson `json:"lessons"`
}

// Lesson is a single piece of content within a module.
type Lesson struct {
	ID          string      `db:"id" json:"id"`
	ModuleID    string      `db:"module_id" json:"module_id"`
	Title       string      `db:"title" json:"title"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	ContentURL  *string     `db:"content_url" json:"content_url,omitempty"`
	Content     *string     `db:"content" json:"content,omitempty"`
	Duration    *int        `db:"duration" json:"duration,omitempty"`
	OrderIndex  int         `db:"order_index" json:"order_index"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// CourseFilter narrows course listings. Empty fields do not filter.
type CourseFilter struct {
	Category  string
	Search    string
	Status    CourseStatus
	TeacherID string
}
