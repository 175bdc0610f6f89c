package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

// Envelope documents the fixed part of every response. Entity payloads are
// added next to these fields under their own key (course, enrollment, ...).
type Envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Count   *int                   `json:"count,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response. Payload keys are merged into the top-level object.
func JSON(c *gin.Context, status int, message string, payload gin.H, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for key, value := range payload {
		if key == "success" {
			continue
		}
		body[key] = value
	}
	if len(meta) > 0 && len(meta[0]) > 0 {
		body["meta"] = meta[0]
	}
	c.JSON(status, body)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, payload gin.H, meta ...map[string]interface{}) {
	JSON(c, http.StatusOK, "", payload, meta...)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, payload gin.H) {
	JSON(c, http.StatusCreated, message, payload)
}

// List responds with a collection under key plus its count.
func List(c *gin.Context, key string, items interface{}, count int, meta ...map[string]interface{}) {
	JSON(c, http.StatusOK, "", gin.H{key: items, "count": count}, meta...)
}

// Error sends an error response converting the error to the common structure.
// The underlying cause is only exposed outside release mode.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Success: false, Message: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil && gin.Mode() != gin.ReleaseMode {
		envelope.Error = appErr.Err.Error()
	}
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
