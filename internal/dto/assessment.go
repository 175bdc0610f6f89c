package dto

import "github.com/noah-isme/eduvillage-api/internal/models"

// CreateAssessmentRequest describes a new assessment.
type CreateAssessmentRequest struct {
	CourseID     string                `json:"course_id" validate:"required"`
	LessonID     *string               `json:"lesson_id"`
	Title        string                `json:"title" validate:"required,max=255"`
	Type         models.AssessmentType `json:"type" validate:"omitempty,oneof=quiz assignment"`
	Duration     *int                  `json:"duration" validate:"omitempty,min=1"`
	TotalMarks   *int                  `json:"total_marks" validate:"omitempty,min=1"`
	PassingMarks *int                  `json:"passing_marks" validate:"omitempty,min=0"`
	Questions    models.Questions      `json:"questions" validate:"omitempty,dive"`
}

// UpdateAssessmentRequest carries a partial assessment update.
type UpdateAssessmentRequest struct {
	Title        *string                `json:"title" validate:"omitempty,min=1,max=255"`
	LessonID     *string                `json:"lesson_id"`
	Duration     *int                   `json:"duration" validate:"omitempty,min=1"`
	TotalMarks   *int                   `json:"total_marks" validate:"omitempty,min=1"`
	PassingMarks *int                   `json:"passing_marks" validate:"omitempty,min=0"`
	Questions    *models.Questions      `json:"questions"`
	Type         *models.AssessmentType `json:"type" validate:"omitempty,oneof=quiz assignment"`
}

// Empty reports whether no field was supplied.
func (r UpdateAssessmentRequest) Empty() bool {
	return r.Title == nil && r.LessonID == nil && r.Duration == nil && r.TotalMarks == nil &&
		r.PassingMarks == nil && r.Questions == nil && r.Type == nil
}
