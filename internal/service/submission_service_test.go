package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type fakeAssessments struct {
	items map[string]*models.Assessment
	seq   int
}

func newFakeAssessments(items ...*models.Assessment) *fakeAssessments {
	f := &fakeAssessments{items: map[string]*models.Assessment{}}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeAssessments) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	copied.Questions = append(models.Questions(nil), a.Questions...)
	return &copied, nil
}

func (f *fakeAssessments) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	out := []models.Assessment{}
	for _, a := range f.items {
		if a.CourseID == courseID {
			copied := *a
			copied.Questions = append(models.Questions(nil), a.Questions...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeAssessments) Create(ctx context.Context, assessment *models.Assessment) error {
	f.seq++
	assessment.ID = "asm-new"
	if assessment.Type == "" {
		assessment.Type = models.AssessmentTypeQuiz
	}
	if assessment.PassingMarks == 0 {
		assessment.PassingMarks = models.DefaultPassingMarks
	}
	f.items[assessment.ID] = assessment
	return nil
}

func (f *fakeAssessments) Update(ctx context.Context, assessment *models.Assessment) error {
	if _, ok := f.items[assessment.ID]; !ok {
		return sql.ErrNoRows
	}
	f.items[assessment.ID] = assessment
	return nil
}

func (f *fakeAssessments) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeSubmissions struct {
	items       map[string]*models.SubmissionDetail
	assessments *fakeAssessments
	seq         int
}

func (f *fakeSubmissions) Create(ctx context.Context, submission *models.Submission) error {
	f.seq++
	submission.ID = "sub-" + submission.StudentID + "-" + submission.AssessmentID
	submission.SubmittedAt = time.Now()
	submission.Status = models.SubmissionStatusPending
	if submission.Score != nil {
		submission.Status = models.SubmissionStatusGraded
		graded := submission.SubmittedAt
		submission.GradedAt = &graded
	}
	detail := &models.SubmissionDetail{Submission: *submission}
	if a, ok := f.assessments.items[submission.AssessmentID]; ok {
		detail.CourseID = a.CourseID
		detail.AssessmentTitle = a.Title
	}
	f.items[submission.ID] = detail
	return nil
}

func (f *fakeSubmissions) FindByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSubmissions) Grade(ctx context.Context, id string, score float64, feedback *string) (*models.Submission, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	now := time.Now()
	s.Score = &score
	s.Feedback = feedback
	s.Status = models.SubmissionStatusGraded
	s.GradedAt = &now
	copied := s.Submission
	return &copied, nil
}

func (f *fakeSubmissions) ListByAssessment(ctx context.Context, assessmentID string) ([]models.SubmissionDetail, error) {
	out := []models.SubmissionDetail{}
	for _, s := range f.items {
		if s.AssessmentID == assessmentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubmissions) ListByStudent(ctx context.Context, studentID string) ([]models.SubmissionDetail, error) {
	out := []models.SubmissionDetail{}
	for _, s := range f.items {
		if s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func sampleQuiz() *models.Assessment {
	return &models.Assessment{
		ID:           "quiz-1",
		CourseID:     "c-1",
		Title:        "Fractions",
		Type:         models.AssessmentTypeQuiz,
		PassingMarks: 70,
		Questions: models.Questions{
			{ID: "1", Prompt: "1/2 + 1/2", CorrectAnswer: "1"},
			{ID: "2", Prompt: "Pick evens", CorrectAnswer: []interface{}{"2", "4"}},
		},
	}
}

func sampleAssignment() *models.Assessment {
	return &models.Assessment{ID: "essay-1", CourseID: "c-1", Title: "Essay", Type: models.AssessmentTypeAssignment}
}

type submissionFixture struct {
	svc         *SubmissionService
	submissions *fakeSubmissions
	invalidator *recordingInvalidator
}

func newSubmissionFixture() *submissionFixture {
	cat := newFakeCatalog()
	cat.addCourse("c-1", "t-1", models.CourseStatusPublished)
	assessments := newFakeAssessments(sampleQuiz(), sampleAssignment())
	submissions := &fakeSubmissions{items: map[string]*models.SubmissionDetail{}, assessments: assessments}
	inv := &recordingInvalidator{}
	return &submissionFixture{
		svc:         NewSubmissionService(submissions, assessments, cat, inv, nil, nil),
		submissions: submissions,
		invalidator: inv,
	}
}

func TestSubmitQuizIsScoredImmediately(t *testing.T) {
	fx := newSubmissionFixture()

	result, err := fx.svc.Submit(context.Background(), studentClaims, dto.SubmitAssessmentRequest{
		AssessmentID: "quiz-1",
		Answers:      models.Answers{"1": "1", "2": []interface{}{"2", "4"}},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Score)
	assert.Equal(t, 100.0, *result.Score)
	require.NotNil(t, result.Passed)
	assert.True(t, *result.Passed)
	assert.Equal(t, models.SubmissionStatusGraded, result.Submission.Status)
	assert.Equal(t, "stu-1", result.Submission.StudentID)
	assert.Equal(t, [][]string{{"stu-1"}}, fx.invalidator.calls)
}

func TestSubmitQuizFailingScore(t *testing.T) {
	fx := newSubmissionFixture()

	result, err := fx.svc.Submit(context.Background(), studentClaims, dto.SubmitAssessmentRequest{
		AssessmentID: "quiz-1",
		Answers:      models.Answers{"1": "1", "2": []interface{}{"4", "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, *result.Score)
	assert.False(t, *result.Passed)
}

func TestSubmitAssignmentStaysPending(t *testing.T) {
	fx := newSubmissionFixture()

	result, err := fx.svc.Submit(context.Background(), studentClaims, dto.SubmitAssessmentRequest{
		AssessmentID: "essay-1",
		Answers:      models.Answers{"text": "My essay"},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Score)
	assert.Nil(t, result.Passed)
	assert.Equal(t, models.SubmissionStatusPending, result.Submission.Status)
}

func TestSubmitRejectsQuizWithoutQuestions(t *testing.T) {
	fx := newSubmissionFixture()
	empty := sampleQuiz()
	empty.ID = "quiz-empty"
	empty.Questions = nil
	fx.submissions.assessments.items[empty.ID] = empty

	_, err := fx.svc.Submit(context.Background(), studentClaims, dto.SubmitAssessmentRequest{AssessmentID: "quiz-empty"})
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Empty(t, fx.submissions.items)

	_, err = fx.svc.Submit(context.Background(), studentClaims, dto.SubmitAssessmentRequest{AssessmentID: "missing"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGradeSubmission(t *testing.T) {
	fx := newSubmissionFixture()
	ctx := context.Background()
	result, err := fx.svc.Submit(ctx, studentClaims, dto.SubmitAssessmentRequest{AssessmentID: "essay-1", Answers: models.Answers{"text": "essay"}})
	require.NoError(t, err)

	grade := 150.0
	feedback := "generous"
	graded, err := fx.svc.Grade(ctx, teacherClaims, result.Submission.ID, dto.GradeSubmissionRequest{Grade: &grade, Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, 150.0, *graded.Score)
	assert.Equal(t, models.SubmissionStatusGraded, graded.Status)
	assert.NotNil(t, graded.GradedAt)
	assert.Equal(t, "generous", *graded.Feedback)
}

func TestGradeRequiresGradeAndOwnership(t *testing.T) {
	fx := newSubmissionFixture()
	ctx := context.Background()
	result, err := fx.svc.Submit(ctx, studentClaims, dto.SubmitAssessmentRequest{AssessmentID: "essay-1"})
	require.NoError(t, err)

	_, err = fx.svc.Grade(ctx, teacherClaims, result.Submission.ID, dto.GradeSubmissionRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Grade is required", appErrors.FromError(err).Message)
	assert.Equal(t, models.SubmissionStatusPending, fx.submissions.items[result.Submission.ID].Status)

	grade := 80.0
	_, err = fx.svc.Grade(ctx, otherTeacher, result.Submission.ID, dto.GradeSubmissionRequest{Grade: &grade})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = fx.svc.Grade(ctx, adminClaims, "missing", dto.GradeSubmissionRequest{Grade: &grade})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = fx.svc.Grade(ctx, adminClaims, result.Submission.ID, dto.GradeSubmissionRequest{Grade: &grade})
	require.NoError(t, err)
}

func TestSubmissionListings(t *testing.T) {
	fx := newSubmissionFixture()
	ctx := context.Background()
	_, err := fx.svc.Submit(ctx, studentClaims, dto.SubmitAssessmentRequest{AssessmentID: "essay-1"})
	require.NoError(t, err)

	mine, err := fx.svc.ListMine(ctx, studentClaims)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	byAssessment, err := fx.svc.ListByAssessment(ctx, teacherClaims, "essay-1")
	require.NoError(t, err)
	assert.Len(t, byAssessment, 1)

	_, err = fx.svc.ListByAssessment(ctx, studentClaims, "essay-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
