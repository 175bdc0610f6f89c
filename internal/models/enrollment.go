package models

import "time"

// ProgressComplete is the progress value at which an enrollment counts as completed.
const ProgressComplete = 100

// Enrollment links a student to a course and tracks progress.
type Enrollment struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	Progress    float64    `db:"progress" json:"progress"`
	EnrolledAt  time.Time  `db:"enrolled_at" json:"enrolled_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
}

// Completed reports whether the enrollment has a completion timestamp.
func (e *Enrollment) Completed() bool {
	return e.CompletedAt != nil
}

// EnrollmentDetail enriches Enrollment with course or student info depending on the listing.
type EnrollmentDetail struct {
	Enrollment
	CourseTitle     string  `db:"course_title" json:"course_title,omitempty"`
	CourseThumbnail *string `db:"course_thumbnail" json:"course_thumbnail,omitempty"`
	CourseCategory  *string `db:"course_category" json:"course_category,omitempty"`
	TeacherName     string  `db:"teacher_name" json:"teacher_name,omitempty"`
	StudentName     string  `db:"student_name" json:"student_name,omitempty"`
	StudentEmail    string  `db:"student_email" json:"student_email,omitempty"`
}

// LessonCompletion records that a student finished a lesson within an enrollment.
type LessonCompletion struct {
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	LessonID     string    `db:"lesson_id" json:"lesson_id"`
	CompletedAt  time.Time `db:"completed_at" json:"completed_at"`
}
