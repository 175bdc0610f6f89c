package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/middleware"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/internal/service"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
	"github.com/noah-isme/eduvillage-api/pkg/storage"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{
				UserID: c.GetHeader("X-Test-User"),
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})
	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}, role, user string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type stubEnrollments struct {
	enrollErr error
	lastActor *models.JWTClaims
}

func (s *stubEnrollments) Enroll(ctx context.Context, actor *models.JWTClaims, req dto.EnrollRequest) (*models.Enrollment, error) {
	s.lastActor = actor
	if req.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment payload")
	}
	if s.enrollErr != nil {
		return nil, s.enrollErr
	}
	return &models.Enrollment{ID: "enr-1", StudentID: actor.UserID, CourseID: req.CourseID, EnrolledAt: time.Now()}, nil
}

func (s *stubEnrollments) UpdateProgress(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateProgressRequest) (*models.Enrollment, error) {
	if req.Progress == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "progress is required")
	}
	e := &models.Enrollment{ID: id, StudentID: actor.UserID, Progress: *req.Progress}
	if *req.Progress >= 100 {
		now := time.Now()
		e.CompletedAt = &now
	}
	return e, nil
}

func (s *stubEnrollments) CompleteLesson(ctx context.Context, actor *models.JWTClaims, id, lessonID string) (*models.Enrollment, error) {
	return &models.Enrollment{ID: id, Progress: 50}, nil
}

func (s *stubEnrollments) ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.EnrollmentDetail, error) {
	return []models.EnrollmentDetail{{Enrollment: models.Enrollment{ID: "enr-1"}, CourseTitle: "Go"}}, nil
}

func (s *stubEnrollments) ListByCourse(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.EnrollmentDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to modify this course")
}

func (s *stubEnrollments) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return nil
}

func enrollmentRouter(stub *stubEnrollments) *gin.Engine {
	router := testRouter()
	h := NewEnrollmentHandler(stub)
	router.POST("/enrollments", h.Enroll)
	router.GET("/enrollments", h.ListMine)
	router.GET("/enrollments/course/:courseId", h.ListByCourse)
	router.PUT("/enrollments/:id/progress", h.UpdateProgress)
	router.POST("/enrollments/:id/lessons/:lessonId/complete", h.CompleteLesson)
	return router
}

func TestEnrollmentHandlerEnroll(t *testing.T) {
	stub := &stubEnrollments{}
	router := enrollmentRouter(stub)

	w := performRequest(router, http.MethodPost, "/enrollments", `{"courseId":"c-1"}`, "student", "stu-1")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	enrollment := body["enrollment"].(map[string]interface{})
	assert.Equal(t, "stu-1", enrollment["student_id"])
	assert.Equal(t, "c-1", enrollment["course_id"])
	assert.Equal(t, "stu-1", stub.lastActor.UserID)

	w = performRequest(router, http.MethodPost, "/enrollments", `{"course_id":"c-1"}`, "student", "stu-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerDuplicate(t *testing.T) {
	router := enrollmentRouter(&stubEnrollments{enrollErr: appErrors.ErrAlreadyEnrolled})

	w := performRequest(router, http.MethodPost, "/enrollments", `{"courseId":"c-1"}`, "student", "stu-1")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "ALREADY_ENROLLED", body["code"])
	assert.Equal(t, "Already enrolled in this course", body["message"])
}

func TestEnrollmentHandlerRejectsAnonymousAndBadJSON(t *testing.T) {
	router := enrollmentRouter(&stubEnrollments{})

	w := performRequest(router, http.MethodPost, "/enrollments", `{"courseId":"c-1"}`, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/enrollments", "{not json", "student", "stu-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, w)["code"])
}

func TestEnrollmentHandlerProgressAndListing(t *testing.T) {
	router := enrollmentRouter(&stubEnrollments{})

	w := performRequest(router, http.MethodPut, "/enrollments/enr-1/progress", map[string]float64{"progress": 100}, "student", "stu-1")
	require.Equal(t, http.StatusOK, w.Code)
	enrollment := decodeBody(t, w)["enrollment"].(map[string]interface{})
	assert.Equal(t, 100.0, enrollment["progress"])
	assert.NotNil(t, enrollment["completed_at"])

	w = performRequest(router, http.MethodGet, "/enrollments", nil, "student", "stu-1")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 1.0, body["count"])
	assert.Len(t, body["enrollments"], 1)

	w = performRequest(router, http.MethodGet, "/enrollments/course/c-1", nil, "teacher", "t-2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodPost, "/enrollments/enr-1/lessons/l-1/complete", nil, "student", "stu-1")
	assert.Equal(t, http.StatusOK, w.Code)
}

type stubSubmissions struct{}

func (stubSubmissions) Submit(ctx context.Context, actor *models.JWTClaims, req dto.SubmitAssessmentRequest) (*dto.SubmissionResult, error) {
	if req.AssessmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid submission payload")
	}
	score := 40.0
	passed := false
	sub := &models.Submission{ID: "sub-1", StudentID: actor.UserID, AssessmentID: req.AssessmentID, Score: &score, Status: models.SubmissionStatusGraded}
	return &dto.SubmissionResult{Submission: sub, Score: &score, Passed: &passed}, nil
}

func (stubSubmissions) Grade(ctx context.Context, actor *models.JWTClaims, id string, req dto.GradeSubmissionRequest) (*models.Submission, error) {
	if req.Grade == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Grade is required")
	}
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Submission not found")
	}
	return &models.Submission{ID: id, Score: req.Grade, Status: models.SubmissionStatusGraded, Feedback: req.Feedback}, nil
}

func (stubSubmissions) ListByAssessment(ctx context.Context, actor *models.JWTClaims, assessmentID string) ([]models.SubmissionDetail, error) {
	return []models.SubmissionDetail{{Submission: models.Submission{ID: "sub-1"}, StudentName: "Ana"}}, nil
}

func (stubSubmissions) ListMine(ctx context.Context, actor *models.JWTClaims) ([]models.SubmissionDetail, error) {
	return []models.SubmissionDetail{}, nil
}

type stubReporter struct{}

func (stubReporter) GradeReport(ctx context.Context, actor *models.JWTClaims, assessmentID string, format service.ExportFormat) (*service.ExportResult, error) {
	if format == "docx" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx")
	}
	return &service.ExportResult{Filename: "grades-quiz-20240101.csv", ContentType: "text/csv", Data: []byte("Student\nAna\n")}, nil
}

func submissionRouter() *gin.Engine {
	router := testRouter()
	h := NewSubmissionHandler(stubSubmissions{}, stubReporter{})
	router.POST("/submissions", h.Submit)
	router.PUT("/submissions/:id/grade", h.Grade)
	router.GET("/submissions/student", h.ListMine)
	router.GET("/submissions/assessment/:id", h.ListByAssessment)
	router.GET("/submissions/assessment/:id/export", h.Export)
	return router
}

func TestSubmissionHandlerSubmit(t *testing.T) {
	router := submissionRouter()

	w := performRequest(router, http.MethodPost, "/submissions", `{"assessmentId":"quiz-1","answers":{"1":"object"}}`, "student", "stu-1")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 40.0, body["score"])
	assert.Equal(t, false, body["passed"])
	submission := body["submission"].(map[string]interface{})
	assert.Equal(t, "graded", submission["status"])
	assert.Equal(t, "quiz-1", submission["assessment_id"])

	w = performRequest(router, http.MethodPost, "/submissions", `{"assessment_id":"quiz-1","answers":{}}`, "student", "stu-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionHandlerGrade(t *testing.T) {
	router := submissionRouter()

	w := performRequest(router, http.MethodPut, "/submissions/sub-1/grade", map[string]interface{}{}, "teacher", "t-1")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Grade is required", decodeBody(t, w)["message"])

	w = performRequest(router, http.MethodPut, "/submissions/sub-1/grade", `{"grade": null}`, "teacher", "t-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPut, "/submissions/missing/grade", map[string]interface{}{"grade": 90}, "teacher", "t-1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodPut, "/submissions/sub-1/grade", map[string]interface{}{"grade": 90, "feedback": "ok"}, "teacher", "t-1")
	require.Equal(t, http.StatusOK, w.Code)
	submission := decodeBody(t, w)["submission"].(map[string]interface{})
	assert.Equal(t, 90.0, submission["score"])
	assert.Equal(t, "ok", submission["feedback"])
}

func TestSubmissionHandlerListsAndExport(t *testing.T) {
	router := submissionRouter()

	w := performRequest(router, http.MethodGet, "/submissions/assessment/quiz-1", nil, "teacher", "t-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["count"])

	w = performRequest(router, http.MethodGet, "/submissions/student", nil, "student", "stu-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decodeBody(t, w)["submissions"])

	w = performRequest(router, http.MethodGet, "/submissions/assessment/quiz-1/export", nil, "teacher", "t-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "grades-quiz-20240101.csv")
	assert.Equal(t, "Student\nAna\n", w.Body.String())

	w = performRequest(router, http.MethodGet, "/submissions/assessment/quiz-1/export?format=docx", nil, "teacher", "t-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubCourses struct {
	courseService
	lastActor  *models.JWTClaims
	lastFilter models.CourseFilter
}

func (s *stubCourses) List(ctx context.Context, actor *models.JWTClaims, filter models.CourseFilter) ([]models.CourseSummary, error) {
	s.lastActor = actor
	s.lastFilter = filter
	return []models.CourseSummary{{Course: models.Course{ID: "c-1", Status: models.CourseStatusPublished}}}, nil
}

func (s *stubCourses) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.CourseDetail, error) {
	if id == "draft" && actor == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
	}
	return &models.CourseDetail{Course: models.Course{ID: id}, Modules: []models.ModuleWithLessons{}}, nil
}

func TestCourseHandlerListPassesFiltersAndCaller(t *testing.T) {
	stub := &stubCourses{}
	router := testRouter()
	h := NewCourseHandler(stub)
	router.GET("/courses", h.List)
	router.GET("/courses/:id", h.Get)

	w := performRequest(router, http.MethodGet, "/courses?category=math&search=alg&status=DRAFT&teacher_id=t-9", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, stub.lastActor)
	assert.Equal(t, models.CourseFilter{Category: "math", Search: "alg", Status: models.CourseStatusDraft, TeacherID: "t-9"}, stub.lastFilter)
	body := decodeBody(t, w)
	assert.Equal(t, 1.0, body["count"])

	w = performRequest(router, http.MethodGet, "/courses", nil, "teacher", "t-1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.lastActor)
	assert.Equal(t, "t-1", stub.lastActor.UserID)

	w = performRequest(router, http.MethodGet, "/courses/draft", nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodGet, "/courses/c-1", nil, "student", "stu-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c-1", decodeBody(t, w)["course"].(map[string]interface{})["id"])
}

type stubDashboard struct{ hit bool }

func (s stubDashboard) ForUser(ctx context.Context, actor *models.JWTClaims) (*dto.DashboardResponse, bool, error) {
	return &dto.DashboardResponse{Role: actor.Role, Student: &models.StudentDashboard{EnrolledCourses: 3}}, s.hit, nil
}

func TestDashboardHandlerReportsCacheHit(t *testing.T) {
	router := testRouter()
	router.GET("/dashboard", middleware.WithResponseMeta(), NewDashboardHandler(stubDashboard{hit: true}).Get)

	w := performRequest(router, http.MethodGet, "/dashboard", nil, "student", "stu-1")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])
	dashboard := body["dashboard"].(map[string]interface{})
	assert.Equal(t, "student", dashboard["role"])

	w = performRequest(router, http.MethodGet, "/dashboard", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadHandlerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	router := testRouter()
	h := NewUploadHandler(service.NewUploadService(store, nil, service.UploadServiceConfig{}), nil)
	router.POST("/upload", h.Upload)
	router.GET("/upload/download", h.Download)
	router.DELETE("/upload/:filename", h.Delete)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("type", "lesson-file"))
	part, err := form.CreateFormFile("file", "Intro Notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("lesson body"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	file := body["file"].(map[string]interface{})
	filename := file["filename"].(string)
	assert.Equal(t, "/uploads/lesson-file/"+filename, body["url"])
	_, err = os.Stat(filepath.Join(dir, "lesson-file", filename))
	require.NoError(t, err)

	w = performRequest(router, http.MethodGet, "/upload/download?type=lesson-file&name=intro", nil, "student", "stu-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lesson body", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), filename)

	w = performRequest(router, http.MethodDelete, "/upload/"+filename+"?type=lesson-file", nil, "teacher", "t-1")
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodDelete, "/upload/"+filename+"?type=lesson-file", nil, "teacher", "t-1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadHandlerRequiresFile(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	router := testRouter()
	router.POST("/upload", NewUploadHandler(service.NewUploadService(store, nil, service.UploadServiceConfig{}), nil).Upload)

	w := performRequest(router, http.MethodPost, "/upload", nil, "teacher", "t-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeBody(t, w)["message"])
}

type failingPinger struct{ err error }

func (p failingPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthAndReady(t *testing.T) {
	router := testRouter()
	healthy := NewMetricsHandler(nil, failingPinger{})
	broken := NewMetricsHandler(nil, failingPinger{err: assert.AnError})
	router.GET("/health", healthy.Health)
	router.GET("/ready", healthy.Ready)
	router.GET("/ready-broken", broken.Ready)
	router.GET("/metrics", healthy.Prometheus)

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/health", nil, "", "").Code)
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/ready", nil, "", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, performRequest(router, http.MethodGet, "/ready-broken", nil, "", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, performRequest(router, http.MethodGet, "/metrics", nil, "", "").Code)
}
