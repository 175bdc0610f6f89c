package dto

import "github.com/noah-isme/eduvillage-api/internal/models"

// SubmitAssessmentRequest carries a student's answers.
type SubmitAssessmentRequest struct {
	AssessmentID string         `json:"assessmentId" validate:"required"`
	Answers      models.Answers `json:"answers"`
}

// GradeSubmissionRequest records a manual grade. Grade is mandatory.
type GradeSubmissionRequest struct {
	Grade    *float64 `json:"grade" validate:"required"`
	Feedback *string  `json:"feedback"`
}

// SubmissionResult is returned after submitting. Passed is nil until graded.
type SubmissionResult struct {
	Submission *models.Submission `json:"submission"`
	Score      *float64           `json:"score"`
	Passed     *bool              `json:"passed"`
}
