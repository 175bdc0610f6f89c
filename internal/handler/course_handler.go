package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, actor *models.JWTClaims, filter models.CourseFilter) ([]models.CourseSummary, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
	CreateModule(ctx context.Context, actor *models.JWTClaims, courseID string, req dto.CreateModuleRequest) (*models.Module, error)
	UpdateModule(ctx context.Context, actor *models.JWTClaims, moduleID string, req dto.UpdateModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, actor *models.JWTClaims, moduleID string) error
	CreateLesson(ctx context.Context, actor *models.JWTClaims, moduleID string, req dto.CreateLessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, actor *models.JWTClaims, lessonID string, req dto.UpdateLessonRequest) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, actor *models.JWTClaims, lessonID string) error
}

// CourseHandler exposes course, module and lesson endpoints.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Description Students and anonymous callers only see published courses; teachers see their own.
// @Tags Courses
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Matches title or description"
// @Param status query string false "draft or published"
// @Param teacher_id query string false "Owning teacher"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    models.CourseStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		TeacherID: strings.TrimSpace(c.Query("teacher_id")),
	}
	courses, err := h.courses.List(c.Request.Context(), claimsFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "courses", courses, len(courses))
}

// Get godoc
// @Summary Get course with modules and lessons
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"course": course})
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Course created successfully", gin.H{"course": course})
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Course updated successfully", gin.H{"course": course})
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Course deleted successfully", nil)
}

// CreateModule godoc
// @Summary Add module to course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body dto.CreateModuleRequest true "Module"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/modules [post]
func (h *CourseHandler) CreateModule(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateModuleRequest
	if !bindJSON(c, &req, "invalid module payload") {
		return
	}
	module, err := h.courses.CreateModule(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Module created successfully", gin.H{"module": module})
}

// UpdateModule godoc
// @Summary Update module
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Param payload body dto.UpdateModuleRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /courses/modules/{moduleId} [put]
func (h *CourseHandler) UpdateModule(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateModuleRequest
	if !bindJSON(c, &req, "invalid module payload") {
		return
	}
	module, err := h.courses.UpdateModule(c.Request.Context(), claims, c.Param("moduleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Module updated successfully", gin.H{"module": module})
}

// DeleteModule godoc
// @Summary Delete module
// @Tags Courses
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /courses/modules/{moduleId} [delete]
func (h *CourseHandler) DeleteModule(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.courses.DeleteModule(c.Request.Context(), claims, c.Param("moduleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Module deleted successfully", nil)
}

// CreateLesson godoc
// @Summary Add lesson to module
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Param payload body dto.CreateLessonRequest true "Lesson"
// @Success 201 {object} response.Envelope
// @Router /courses/modules/{moduleId}/lessons [post]
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateLessonRequest
	if !bindJSON(c, &req, "invalid lesson payload") {
		return
	}
	lesson, err := h.courses.CreateLesson(c.Request.Context(), claims, c.Param("moduleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Lesson created successfully", gin.H{"lesson": lesson})
}

// UpdateLesson godoc
// @Summary Update lesson
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lessonId path string true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /courses/lessons/{lessonId} [put]
func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateLessonRequest
	if !bindJSON(c, &req, "invalid lesson payload") {
		return
	}
	lesson, err := h.courses.UpdateLesson(c.Request.Context(), claims, c.Param("lessonId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Lesson updated successfully", gin.H{"lesson": lesson})
}

// DeleteLesson godoc
// @Summary Delete lesson
// @Tags Courses
// @Security BearerAuth
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /courses/lessons/{lessonId} [delete]
func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.courses.DeleteLesson(c.Request.Context(), claims, c.Param("lessonId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "Lesson deleted successfully", nil)
}
