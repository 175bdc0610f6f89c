package models

import "time"

// SubmissionStatus tracks whether a submission has a score.
type SubmissionStatus string

const (
	SubmissionStatusPending SubmissionStatus = "pending"
	SubmissionStatusGraded  SubmissionStatus = "graded"
)

// Submission is one student attempt at an assessment.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	AssessmentID string           `db:"assessment_id" json:"assessment_id"`
	Answers      Answers          `db:"answers" json:"answers"`
	Score        *float64         `db:"score" json:"score"`
	Status       SubmissionStatus `db:"status" json:"status"`
	Feedback     *string          `db:"feedback" json:"feedback"`
	SubmittedAt  time.Time        `db:"submitted_at" json:"submitted_at"`
	GradedAt     *time.Time       `db:"graded_at" json:"graded_at"`
}

// SubmissionDetail joins student or assessment info for listings.
type SubmissionDetail struct {
	Submission
	StudentName     string `db:"student_name" json:"student_name,omitempty"`
	StudentEmail    string `db:"student_email" json:"student_email,omitempty"`
	AssessmentTitle string `db:"assessment_title" json:"assessment_title,omitempty"`
	CourseID        string `db:"course_id" json:"course_id,omitempty"`
	CourseTitle     string `db:"course_title" json:"course_title,omitempty"`
	PassingMarks    *int   `db:"passing_marks" json:"passing_marks,omitempty"`
}
