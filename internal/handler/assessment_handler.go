package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

type assessmentService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAssessmentRequest) (*models.Assessment, error)
	ListByCourse(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.Assessment, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.Assessment, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateAssessmentRequest) (*models.Assessment, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// AssessmentHandler exposes quiz and assignment endpoints.
type AssessmentHandler struct {
	assessments assessmentService
}

// NewAssessmentHandler constructs AssessmentHandler.
func NewAssessmentHandler(assessments assessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// Create godoc
// @Summary Create assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAssessmentRequest true "Assessment"
// @Success 201 {object} response.Envelope
// @Router /assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	assessment, err := h.assessments.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Assessment created successfully", gin.H{"assessment": assessment})
}

// ListByCourse godoc
// @Summary List a course's assessments
// @Description Answer keys are omitted unless the caller manages the course.
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/course/{courseId} [get]
func (h *AssessmentHandler) ListByCourse(c *gin.Context) {
	assessments, err := h.assessments.ListByCourse(c.Request.Context(), claimsFromContext(c), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "assessments", assessments, len(assessments))
}

// Get godoc
// @Summary Get assessment
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	assessment, err := h.assessments.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"assessment": assessment})
}

// Update godoc
// @Summary Update assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Param payload body dto.UpdateAssessmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [put]
func (h *AssessmentHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	assessment, err := h.assessments.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Assessment updated successfully", gin.H{"assessment": assessment})
}

// Delete godoc
// @Summary Delete assessment
// @Tags Assessments
// @Security BearerAuth
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id} [delete]
func (h *AssessmentHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.assessments.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Assessment deleted successfully", nil)
}
