package models

import "time"

// StudentDashboard summarises a student's learning activity.
type StudentDashboard struct {
	EnrolledCourses  int       `db:"enrolled_courses" json:"enrolled_courses"`
	CompletedCourses int       `db:"completed_courses" json:"completed_courses"`
	AverageProgress  float64   `db:"average_progress" json:"average_progress"`
	Submissions      int       `db:"submissions" json:"submissions"`
	AverageScore     *float64  `db:"average_score" json:"average_score"`
	GeneratedAt      time.Time `db:"-" json:"generated_at"`
}

// TeacherDashboard summarises a teacher's courses and grading backlog.
type TeacherDashboard struct {
	TotalCourses       int       `db:"total_courses" json:"total_courses"`
	PublishedCourses   int       `db:"published_courses" json:"published_courses"`
	DraftCourses       int       `db:"draft_courses" json:"draft_courses"`
	TotalEnrollments   int       `db:"total_enrollments" json:"total_enrollments"`
	PendingSubmissions int       `db:"pending_submissions" json:"pending_submissions"`
	GeneratedAt        time.Time `db:"-" json:"generated_at"`
}

// AdminDashboard summarises the platform.
type AdminDashboard struct {
	Students         int       `db:"students" json:"students"`
	Teachers         int       `db:"teachers" json:"teachers"`
	Admins           int       `db:"admins" json:"admins"`
	PublishedCourses int       `db:"published_courses" json:"published_courses"`
	DraftCourses     int       `db:"draft_courses" json:"draft_courses"`
	Enrollments      int       `db:"enrollments" json:"enrollments"`
	Submissions      int       `db:"submissions" json:"submissions"`
	GeneratedAt      time.Time `db:"-" json:"generated_at"`
}
