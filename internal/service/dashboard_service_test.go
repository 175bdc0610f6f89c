package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduvillage-api/internal/models"
	appErrors "github.com/noah-isme/eduvillage-api/pkg/errors"
)

type memoryCache struct {
	entries map[string][]byte
	getErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

type countingDashboardRepo struct {
	calls int
	err   error
}

func (r *countingDashboardRepo) StudentSummary(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &models.StudentDashboard{EnrolledCourses: 2, CompletedCourses: 1, AverageProgress: 75}, nil
}

func (r *countingDashboardRepo) TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherDashboard, error) {
	r.calls++
	return &models.TeacherDashboard{TotalCourses: 3, PublishedCourses: 2, DraftCourses: 1, PendingSubmissions: 4}, nil
}

func (r *countingDashboardRepo) AdminSummary(ctx context.Context) (*models.AdminDashboard, error) {
	r.calls++
	return &models.AdminDashboard{Students: 10, Teachers: 2, Admins: 1}, nil
}

func newDashboardFixture(enabled bool) (*DashboardService, *countingDashboardRepo, *memoryCache) {
	repo := &countingDashboardRepo{}
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, nil, enabled)
	return NewDashboardService(repo, cache, nil, DashboardServiceConfig{}), repo, store
}

func TestDashboardPerRole(t *testing.T) {
	svc, _, _ := newDashboardFixture(false)
	ctx := context.Background()

	student, hit, err := svc.ForUser(ctx, studentClaims)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NotNil(t, student.Student)
	assert.Nil(t, student.Teacher)
	assert.Equal(t, 2, student.Student.EnrolledCourses)

	teacher, _, err := svc.ForUser(ctx, teacherClaims)
	require.NoError(t, err)
	require.NotNil(t, teacher.Teacher)
	assert.Equal(t, 4, teacher.Teacher.PendingSubmissions)

	admin, _, err := svc.ForUser(ctx, adminClaims)
	require.NoError(t, err)
	require.NotNil(t, admin.Admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, _, err = svc.ForUser(ctx, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestDashboardCachesUntilInvalidated(t *testing.T) {
	svc, repo, store := newDashboardFixture(true)
	ctx := context.Background()

	_, hit, err := svc.ForUser(ctx, studentClaims)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, store.entries, "dashboard:student:stu-1")

	cached, hit, err := svc.ForUser(ctx, studentClaims)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 75.0, cached.Student.AverageProgress)
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate(ctx, "stu-1")
	assert.Equal(t, []string{"dashboard:*:stu-1", "dashboard:admin"}, store.deleted)

	_, hit, err = svc.ForUser(ctx, studentClaims)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)
}

func TestDashboardCacheFailureFallsBackToDatabase(t *testing.T) {
	svc, repo, store := newDashboardFixture(true)
	store.getErr = errors.New("redis down")

	resp, hit, err := svc.ForUser(context.Background(), studentClaims)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, resp.Student)
	assert.Equal(t, 1, repo.calls)
}

func TestDashboardRepositoryError(t *testing.T) {
	svc, repo, _ := newDashboardFixture(false)
	repo.err = errors.New("boom")

	_, _, err := svc.ForUser(context.Background(), studentClaims)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
