package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eduvillage-api/internal/middleware"
	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
	"github.com/noah-isme/eduvillage-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

// requireClaims writes a 401 and returns false when the request is anonymous.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// bindJSON decodes the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, message))
		return false
	}
	return true
}
