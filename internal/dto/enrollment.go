package dto

// EnrollRequest enrolls the caller into a course.
type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

// UpdateProgressRequest sets an enrollment's progress percentage.
type UpdateProgressRequest struct {
	Progress *float64 `json:"progress" validate:"required"`
}
