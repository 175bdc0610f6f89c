package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduvillage-api/internal/dto"
	"github.com/noah-isme/eduvillage-api/internal/middleware"
	"github.com/noah-isme/eduvillage-api/internal/models"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

type dashboardService interface {
	ForUser(ctx context.Context, actor *models.JWTClaims) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Role dashboard
// @Description Student, teacher or admin summary depending on the caller's role.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	dashboard, cacheHit, err := h.service.ForUser(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.OK(c, gin.H{"dashboard": dashboard}, middleware.ResponseMeta(c))
}
