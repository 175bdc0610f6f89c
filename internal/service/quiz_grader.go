package service

import (
	"reflect"

	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

// ErrNoQuestions is returned when a quiz without questions is scored.
var ErrNoQuestions = appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "assessment has no questions")

// QuizResult is the outcome of auto-grading one submission.
type QuizResult struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Score   int  `json:"score"`
	Passed  bool `json:"passed"`
}

// ScoreQuiz compares each answer to the stored correct answer. Comparison is
// exact: "4" and 4 differ, as do "Paris" and "paris". Missing answers count
// as wrong.
func ScoreQuiz(questions models.Questions, answers models.Answers, passingMarks int) (QuizResult, error) {
	total := len(questions)
	if total == 0 {
		return QuizResult{}, ErrNoQuestions
	}
	if passingMarks <= 0 {
		passingMarks = models.DefaultPassingMarks
	}

	correct := 0
	for _, question := range questions {
		answer, ok := answers[string(question.ID)]
		if !ok {
			continue
		}
		if reflect.DeepEqual(answer, question.CorrectAnswer) {
			correct++
		}
	}

	score := percentOf(correct, total)
	return QuizResult{
		Correct: correct,
		Total:   total,
		Score:   score,
		Passed:  score >= passingMarks,
	}, nil
}

// percentOf returns part/total*100 rounded half up, using integers only.
func percentOf(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}
