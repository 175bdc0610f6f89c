package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// AssessmentType distinguishes auto-graded quizzes from manually graded work.
type AssessmentType string

const (
	AssessmentTypeQuiz       AssessmentType = "quiz"
	AssessmentTypeAssignment AssessmentType = "assignment"
)

const (
	DefaultAssessmentDuration = 1800
	DefaultTotalMarks         = 100
	DefaultPassingMarks       = 70
)

// Assessment is a gradable unit attached to a course.
type Assessment struct {
	ID           string         `db:"id" json:"id"`
	CourseID     string         `db:"course_id" json:"course_id"`
	LessonID     *string        `db:"lesson_id" json:"lesson_id,omitempty"`
	Title        string         `db:"title" json:"title"`
	Type         AssessmentType `db:"type" json:"type"`
	Duration     int            `db:"duration" json:"duration"`
	TotalMarks   int            `db:"total_marks" json:"total_marks"`
	PassingMarks int            `db:"passing_marks" json:"passing_marks"`
	Questions    Questions      `db:"questions" json:"questions"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// PassThreshold returns the passing mark, falling back to the default when unset.
func (a *Assessment) PassThreshold() int {
	if a.PassingMarks <= 0 {
		return DefaultPassingMarks
	}
	return a.PassingMarks
}

// QuestionID accepts both numeric and string ids on input. Answers are keyed by
// its string form.
type QuestionID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *QuestionID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*id = QuestionID(t)
	case json.Number:
		*id = QuestionID(t.String())
	default:
		return fmt.Errorf("question id must be a string or number, got %s", string(b))
	}
	return nil
}

// MarshalJSON keeps canonical integer ids numeric. Forms such as "01" or "+5"
// stay strings so the output is valid JSON.
func (id QuestionID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Question is one item of a quiz.
type Question struct {
	ID            QuestionID  `json:"id"`
	Prompt        string      `json:"question"`
	Type          string      `json:"type,omitempty"`
	Options       []string    `json:"options,omitempty"`
	CorrectAnswer interface{} `json:"correctAnswer,omitempty"`
}

// Questions is the ordered question list stored in a JSONB column.
type Questions []Question

// Value implements driver.Valuer.
func (q Questions) Value() (driver.Value, error) {
	if q == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// Scan implements sql.Scanner.
func (q *Questions) Scan(src interface{}) error {
	return scanJSON(src, q, "[]")
}

// WithoutAnswers returns a copy safe to show to students.
func (q Questions) WithoutAnswers() Questions {
	out := make(Questions, len(q))
	for i, question := range q {
		question.CorrectAnswer = nil
		out[i] = question
	}
	return out
}

// Answers maps a question id to the submitted answer.
type Answers map[string]interface{}

// Value implements driver.Valuer.
func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Answers) Scan(src interface{}) error {
	return scanJSON(src, a, "{}")
}

func scanJSON(src interface{}, dest interface{}, empty string) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		raw = []byte(empty)
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dest)
	}
	if len(raw) == 0 {
		raw = []byte(empty)
	}
	return json.Unmarshal(raw, dest)
}
