package dto

import "github.com/noah-isme/eduvillage-api/internal/models"

// DashboardResponse holds the caller's role-specific dashboard. Exactly one section is set.
type DashboardResponse struct {
	Role    models.UserRole          `json:"role"`
	Student *models.StudentDashboard `json:"student,omitempty"`
	Teacher *models.TeacherDashboard `json:"teacher,omitempty"`
	Admin   *models.AdminDashboard   `json:"admin,omitempty"`
}
