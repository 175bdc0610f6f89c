package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/internal/service"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, actor *models.JWTClaims, req dto.SubmitAssessmentRequest) (*dto.SubmissionResult, error)
	Grade(ctx context.Context, actor *models.JWTClaims, id string, req dto.GradeSubmissionRequest) (*models.Submission, error)
	ListByAssessment(ctx context.Context, actor *models.JWTClaims, assessmentID string) ([]models.SubmissionDetail, error)
	ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.SubmissionDetail, error)
}

type gradeReporter interface {
	GradeReport(ctx context.Context, actor *models.JWTClaims, assessmentID string, format service.ExportFormat) (*service.ExportResult, error)
}

// SubmissionHandler exposes submission, grading and grade export endpoints.
type SubmissionHandler struct {
	submissions submissionService
	reports     gradeReporter
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(submissions submissionService, reports gradeReporter) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, reports: reports}
}

// Submit godoc
// @Summary Submit answers
// @Description Quizzes are scored on submission; other types stay pending until graded.
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitAssessmentRequest true "Answers keyed by question id"
// @Success 201 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.SubmitAssessmentRequest
	if !bindJSON(c, &req, "invalid submission payload") {
		return
	}
	result, err := h.submissions.Submit(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Submission received", gin.H{
		"submission": result.Submission,
		"score":      result.Score,
		"passed":     result.Passed,
	})
}

// Grade godoc
// @Summary Grade a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param payload body dto.GradeSubmissionRequest true "Grade and feedback"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Grade is required"
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id}/grade [put]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	submission, err := h.submissions.Grade(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Submission graded", gin.H{"submission": submission})
}

// ListByAssessment godoc
// @Summary List submissions for an assessment
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/assessment/{id} [get]
func (h *SubmissionHandler) ListByAssessment(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	submissions, err := h.submissions.ListByAssessment(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "submissions", submissions, len(submissions))
}

// ListMine godoc
// @Summary List my submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /submissions/student [get]
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	submissions, err := h.submissions.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "submissions", submissions, len(submissions))
}

// Export godoc
// @Summary Download the grade report for an assessment
// @Tags Submissions
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param format query string false "csv (default), xlsx or pdf"
// @Success 200 {file} file
// @Router /submissions/assessment/{id}/export [get]
func (h *SubmissionHandler) Export(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	report, err := h.reports.GradeReport(c.Request.Context(), claims, c.Param("id"), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
