package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

func newAssessmentFixture() (*AssessmentService, *fakeAssessments) {
	cat := newFakeCatalog()
	cat.addCourse("c-1", "t-1", models.CourseStatusPublished)
	assessments := newFakeAssessments(sampleQuiz())
	return NewAssessmentService(assessments, cat, nil, nil), assessments
}

func TestAssessmentCreateByOwner(t *testing.T) {
	svc, store := newAssessmentFixture()
	ctx := context.Background()

	req := dto.CreateAssessmentRequest{
		CourseID:  "c-1",
		Title:     "  Checkpoint ",
		Questions: models.Questions{{ID: "q1", Prompt: "2+2", CorrectAnswer: "4"}},
	}
	created, err := svc.Create(ctx, teacherClaims, req)
	require.NoError(t, err)
	assert.Equal(t, "Checkpoint", created.Title)
	assert.Equal(t, models.AssessmentTypeQuiz, created.Type)
	assert.Contains(t, store.items, created.ID)

	_, err = svc.Create(ctx, otherTeacher, req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	req.CourseID = "missing"
	_, err = svc.Create(ctx, adminClaims, req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAssessmentCreateRejectsBadQuestionIDs(t *testing.T) {
	svc, _ := newAssessmentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, teacherClaims, dto.CreateAssessmentRequest{
		CourseID:  "c-1",
		Title:     "Dupes",
		Questions: models.Questions{{ID: "1"}, {ID: "1"}},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, teacherClaims, dto.CreateAssessmentRequest{
		CourseID:  "c-1",
		Title:     "Blank",
		Questions: models.Questions{{Prompt: "no id"}},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAssessmentQuizNeedsQuestions(t *testing.T) {
	svc, store := newAssessmentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, teacherClaims, dto.CreateAssessmentRequest{CourseID: "c-1", Title: "Empty quiz"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, teacherClaims, dto.CreateAssessmentRequest{CourseID: "c-1", Title: "Empty quiz", Type: models.AssessmentTypeQuiz, Questions: models.Questions{}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Len(t, store.items, 1)

	essay, err := svc.Create(ctx, teacherClaims, dto.CreateAssessmentRequest{CourseID: "c-1", Title: "Essay", Type: models.AssessmentTypeAssignment})
	require.NoError(t, err)

	none := models.Questions{}
	_, err = svc.Update(ctx, teacherClaims, "quiz-1", dto.UpdateAssessmentRequest{Questions: &none})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	quiz := models.AssessmentTypeQuiz
	_, err = svc.Update(ctx, teacherClaims, essay.ID, dto.UpdateAssessmentRequest{Type: &quiz})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAssessmentReadsHideAnswersFromStudents(t *testing.T) {
	svc, _ := newAssessmentFixture()
	ctx := context.Background()

	forStudent, err := svc.Get(ctx, studentClaims, "quiz-1")
	require.NoError(t, err)
	for _, q := range forStudent.Questions {
		assert.Nil(t, q.CorrectAnswer)
	}

	forOwner, err := svc.Get(ctx, teacherClaims, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "1", forOwner.Questions[0].CorrectAnswer)

	listed, err := svc.ListByCourse(ctx, nil, "c-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Nil(t, listed[0].Questions[1].CorrectAnswer)

	_, err = svc.ListByCourse(ctx, studentClaims, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Get(ctx, studentClaims, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAssessmentUpdateAndDelete(t *testing.T) {
	svc, store := newAssessmentFixture()
	ctx := context.Background()

	_, err := svc.Update(ctx, teacherClaims, "quiz-1", dto.UpdateAssessmentRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	passing := 50
	updated, err := svc.Update(ctx, teacherClaims, "quiz-1", dto.UpdateAssessmentRequest{PassingMarks: &passing})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.PassingMarks)
	assert.Len(t, updated.Questions, 2)

	_, err = svc.Update(ctx, otherTeacher, "quiz-1", dto.UpdateAssessmentRequest{PassingMarks: &passing})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	assert.ErrorIs(t, svc.Delete(ctx, studentClaims, "quiz-1"), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminClaims, "quiz-1"))
	assert.Empty(t, store.items)
	assert.ErrorIs(t, svc.Delete(ctx, adminClaims, "quiz-1"), appErrors.ErrNotFound)
}
