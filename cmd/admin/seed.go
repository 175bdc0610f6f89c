package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/models"
)

type seedFile struct {
	TeacherEmail string       `yaml:"teacher_email"`
	Courses      []seedCourse `yaml:"courses"`
}

type seedCourse struct {
	Title       string              `yaml:"title"`
	Description *string             `yaml:"description"`
	Category    *string             `yaml:"category"`
	Thumbnail   *string             `yaml:"thumbnail"`
	Price       *float64            `yaml:"price"`
	Status      models.CourseStatus `yaml:"status"`
	Modules     []seedModule        `yaml:"modules"`
	Assessments []seedAssessment    `yaml:"assessments"`
}

type seedModule struct {
	Title   string       `yaml:"title"`
	Lessons []seedLesson `yaml:"lessons"`
}

type seedLesson struct {
	Title       string             `yaml:"title"`
	ContentType models.ContentType `yaml:"content_type"`
	ContentURL  *string            `yaml:"content_url"`
	Content     *string            `yaml:"content"`
	Duration    *int               `yaml:"duration"`
}

type seedAssessment struct {
	Title        string                `yaml:"title"`
	Type         models.AssessmentType `yaml:"type"`
	Duration     *int                  `yaml:"duration"`
	TotalMarks   *int                  `yaml:"total_marks"`
	PassingMarks *int                  `yaml:"passing_marks"`
	Questions    []seedQuestion        `yaml:"questions"`
}

type seedQuestion struct {
	ID            string      `yaml:"id"`
	Question      string      `yaml:"question"`
	Type          string      `yaml:"type"`
	Options       []string    `yaml:"options"`
	CorrectAnswer interface{} `yaml:"correct_answer"`
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if file.TeacherEmail == "" {
		return nil, fmt.Errorf("seed file %s: teacher_email is required", path)
	}
	return &file, nil
}

type teacherFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type courseAuthor interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateCourseRequest) (*models.Course, error)
	CreateModule(ctx context.Context, actor *models.JWTClaims, courseID string, req dto.CreateModuleRequest) (*models.Module, error)
	CreateLesson(ctx context.Context, actor *models.JWTClaims, moduleID string, req dto.CreateLessonRequest) (*models.Lesson, error)
}

type assessmentAuthor interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateAssessmentRequest) (*models.Assessment, error)
}

// courseSeeder creates courses through the same services the API uses, acting as the teacher.
type courseSeeder struct {
	users       teacherFinder
	courses     courseAuthor
	assessments assessmentAuthor
}

// Seed returns the number of courses created.
func (s *courseSeeder) Seed(ctx context.Context, file *seedFile) (int, error) {
	teacher, err := s.users.FindByEmail(ctx, file.TeacherEmail)
	if err != nil {
		return 0, fmt.Errorf("find teacher %s: %w", file.TeacherEmail, err)
	}
	if teacher.Role != models.RoleTeacher && teacher.Role != models.RoleAdmin {
		return 0, fmt.Errorf("user %s is a %s, not a teacher", teacher.Email, teacher.Role)
	}
	actor := &models.JWTClaims{UserID: teacher.ID, Role: teacher.Role, Email: teacher.Email, Name: teacher.Name}

	for i, c := range file.Courses {
		course, err := s.courses.Create(ctx, actor, dto.CreateCourseRequest{
			Title:       c.Title,
			Description: c.Description,
			Category:    c.Category,
			Thumbnail:   c.Thumbnail,
			Price:       c.Price,
			Status:      c.Status,
		})
		if err != nil {
			return i, fmt.Errorf("course %q: %w", c.Title, err)
		}

		for mi, m := range c.Modules {
			order := mi
			module, err := s.courses.CreateModule(ctx, actor, course.ID, dto.CreateModuleRequest{Title: m.Title, OrderIndex: &order})
			if err != nil {
				return i, fmt.Errorf("course %q module %q: %w", c.Title, m.Title, err)
			}
			for li, l := range m.Lessons {
				lessonOrder := li
				if _, err := s.courses.CreateLesson(ctx, actor, module.ID, dto.CreateLessonRequest{
					Title:       l.Title,
					ContentType: l.ContentType,
					ContentURL:  l.ContentURL,
					Content:     l.Content,
					Duration:    l.Duration,
					OrderIndex:  &lessonOrder,
				}); err != nil {
					return i, fmt.Errorf("course %q lesson %q: %w", c.Title, l.Title, err)
				}
			}
		}

		for _, a := range c.Assessments {
			questions := make(models.Questions, 0, len(a.Questions))
			for _, q := range a.Questions {
				questions = append(questions, models.Question{
					ID:            models.QuestionID(q.ID),
					Prompt:        q.Question,
					Type:          q.Type,
					Options:       q.Options,
					CorrectAnswer: q.CorrectAnswer,
				})
			}
			if _, err := s.assessments.Create(ctx, actor, dto.CreateAssessmentRequest{
				CourseID:     course.ID,
				Title:        a.Title,
				Type:         a.Type,
				Duration:     a.Duration,
				TotalMarks:   a.TotalMarks,
				PassingMarks: a.PassingMarks,
				Questions:    questions,
			}); err != nil {
				return i, fmt.Errorf("course %q assessment %q: %w", c.Title, a.Title, err)
			}
		}
	}
	return len(file.Courses), nil
}
