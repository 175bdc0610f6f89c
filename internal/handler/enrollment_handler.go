package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, actor *models.JWTClaims, req dto.EnrollRequest) (*models.Enrollment, error)
	UpdateProgress(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateProgressRequest) (*models.Enrollment, error)
	CompleteLesson(ctx context.Context, actor *models.JWTClaims, id, lessonID string) (*models.Enrollment, error)
	ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.EnrollmentDetail, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Already enrolled"
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Enrolled successfully", gin.H{"enrollment": enrollment})
}

// ListMine godoc
// @Summary List my enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollments.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "enrollments", enrollments, len(enrollments))
}

// ListByCourse godoc
// @Summary List students enrolled in a course
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/course/{courseId} [get]
func (h *EnrollmentHandler) ListByCourse(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollments.ListByCourse(c.Request.Context(), claims, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "enrollments", enrollments, len(enrollments))
}

// UpdateProgress godoc
// @Summary Update enrollment progress
// @Description Progress of 100 marks the enrollment completed; lower values clear completion.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body dto.UpdateProgressRequest true "Progress"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/progress [put]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	enrollment, err := h.enrollments.UpdateProgress(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Progress updated", gin.H{"enrollment": enrollment})
}

// CompleteLesson godoc
// @Summary Mark a lesson completed
// @Description Progress is recomputed from the share of completed lessons.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/lessons/{lessonId}/complete [post]
func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollments.CompleteLesson(c.Request.Context(), claims, c.Param("id"), c.Param("lessonId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Lesson completed", gin.H{"enrollment": enrollment})
}

// Delete godoc
// @Summary Leave a course
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Unenrolled successfully", nil)
}
