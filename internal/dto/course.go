package dto

import "github.com/noah-isme/eduvillage-api/internal/models"

// CreateCourseRequest describes a new course. The owner is taken from the token.
type CreateCourseRequest struct {
	Title       string              `json:"title" validate:"required,min=3,max=255"`
	Description *string             `json:"description"`
	Category    *string             `json:"category" validate:"omitempty,max=100"`
	Thumbnail   *string             `json:"thumbnail"`
	Price       *float64            `json:"price" validate:"omitempty,min=0"`
	Status      models.CourseStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdateCourseRequest carries a partial course update.
type UpdateCourseRequest struct {
	Title       *string              `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string              `json:"description"`
	Category    *string              `json:"category" validate:"omitempty,max=100"`
	Thumbnail   *string              `json:"thumbnail"`
	Price       *float64             `json:"price" validate:"omitempty,min=0"`
	Status      *models.CourseStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

// Empty reports whether no field was supplied.
func (r UpdateCourseRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Category == nil && r.Thumbnail == nil && r.Price == nil && r.Status == nil
}

// CreateModuleRequest adds a module to a course.
type CreateModuleRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	OrderIndex *int   `json:"order_index" validate:"omitempty,min=0"`
}

// UpdateModuleRequest carries a partial module update.
type UpdateModuleRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1,max=255"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,min=0"`
}

// Empty reports whether no field was supplied.
func (r UpdateModuleRequest) Empty() bool {
	return r.Title == nil && r.OrderIndex == nil
}

// CreateLessonRequest adds a lesson to a module.
type CreateLessonRequest struct {
	Title       string             `json:"title" validate:"required,max=255"`
	ContentType models.ContentType `json:"content_type" validate:"omitempty,oneof=video text pdf"`
	ContentURL  *string            `json:"content_url"`
	Content     *string            `json:"content"`
	Duration    *int               `json:"duration" validate:"omitempty,min=0"`
	OrderIndex  *int               `json:"order_index" validate:"omitempty,min=0"`
}

// UpdateLessonRequest carries a partial lesson update.
type UpdateLessonRequest struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=255"`
	ContentType *models.ContentType `json:"content_type" validate:"omitempty,oneof=video text pdf"`
	ContentURL  *string             `json:"content_url"`
	Content     *string             `json:"content"`
	Duration    *int                `json:"duration" validate:"omitempty,min=0"`
	OrderIndex  *int                `json:"order_index" validate:"omitempty,min=0"`
}

// Empty reports whether no field was supplied.
func (r UpdateLessonRequest) Empty() bool {
	return r.Title == nil && r.ContentType == nil && r.ContentURL == nil && r.Content == nil && r.Duration == nil && r.OrderIndex == nil
}
