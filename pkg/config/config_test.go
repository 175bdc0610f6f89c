package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, int64(100*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Equal(t, 10, cfg.Uploads.MaxFiles)
	assert.Contains(t, cfg.Uploads.AllowedExtensions, "docx")
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("JWT_EXPIRATION", "not-a-duration")
	v.Set("UPLOAD_MAX_FILE_SIZE", -1)
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("DATABASE_URL", "postgres://u:p@db/edu")

	cfg := fromViper(v)

	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, int64(100*1024*1024), cfg.Uploads.MaxFileSizeBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://u:p@db/edu", cfg.Database.URL)
}

func TestSplitAndTrimEmpty(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
}
