package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrTokenExpired
}

var tokens = stubValidator{
	"student-token": {UserID: "stu-1", Role: models.RoleStudent},
	"teacher-token": {UserID: "t-1", Role: models.RoleTeacher},
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJWTRequiresBearerToken(t *testing.T) {
	router := gin.New()
	router.GET("/me", JWT(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).UserID)
	})

	rec := serve(router, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = serve(router, http.MethodGet, "/me", "expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decode(t, rec)["code"])

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/me", "student-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stu-1", rec.Body.String())
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	router := gin.New()
	router.GET("/courses", OptionalJWT(tokens), func(c *gin.Context) {
		if claims := CurrentUser(c); claims != nil {
			c.String(http.StatusOK, string(claims.Role))
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/courses", "").Body.String())
	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/courses", "bogus").Body.String())
	assert.Equal(t, "teacher", serve(router, http.MethodGet, "/courses", "teacher-token").Body.String())
}

func TestRequireRoles(t *testing.T) {
	router := gin.New()
	router.POST("/courses", JWT(tokens), RequireRoles(models.RoleTeacher, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	router.POST("/bare", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/courses", "teacher-token").Code)

	rec := serve(router, http.MethodPost, "/courses", "student-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec)["code"])

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/bare", "").Code)
}

type recordingAudit struct {
	entries []*models.AuditLog
	err     error
}

func (r *recordingAudit) Create(ctx context.Context, log *models.AuditLog) error {
	r.entries = append(r.entries, log)
	return r.err
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	recorder := &recordingAudit{}
	router := gin.New()
	router.PUT("/submissions/:id/grade", JWT(tokens), Audit(recorder, nil, models.AuditActionGrade, "submission", "id"), func(c *gin.Context) {
		if c.Query("fail") != "" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodPut, "/submissions/sub-9/grade", "teacher-token")
	serve(router, http.MethodPut, "/submissions/sub-9/grade?fail=1", "teacher-token")

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, models.AuditActionGrade, entry.Action)
	assert.Equal(t, "submission", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "sub-9", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "t-1", *entry.UserID)

	var values map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.NewValues, &values))
	assert.Equal(t, "/submissions/:id/grade", values["path"])
}

func TestAuditFailureDoesNotAffectResponse(t *testing.T) {
	recorder := &recordingAudit{err: errors.New("db down")}
	router := gin.New()
	router.POST("/enrollments", Audit(recorder, nil, models.AuditActionEnroll, "enrollment", ""), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	rec := serve(router, http.MethodPost, "/enrollments", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, recorder.entries, 1)
	assert.Nil(t, recorder.entries[0].UserID)
	assert.Nil(t, recorder.entries[0].ResourceID)
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	router := gin.New()
	var meta map[string]interface{}
	router.GET("/dashboard", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		SetMeta(c, "role", "student")
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/dashboard", "")
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "student", meta["role"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestResponseMetaWithoutTiming(t *testing.T) {
	router := gin.New()
	var meta map[string]interface{}
	router.GET("/plain", func(c *gin.Context) {
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})

	serve(router, http.MethodGet, "/plain", "")
	assert.NotNil(t, meta)
	assert.NotContains(t, meta, "processing_time_ms")
}
