package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docentes/internal/db"
	apperrors "docentes/internal/errors"
	"docentes/internal/model"
	"docentes/internal/repository"
)

// memoryCache mirrors the redis semantics of cache.Client in process.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst interface{}) bool {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	return ok && json.Unmarshal(data, dst) == nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) SetJSONIfAbsent(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = data
	}
	c.mu.Unlock()
	return nil
}

// interleavingRepository runs afterFind once, between a read of the store
// and the caller receiving its result.
type interleavingRepository struct {
	repository.TeacherRepository
	afterFind func()
}

func (r *interleavingRepository) FindByID(ctx context.Context, id uint) (*model.Teacher, error) {
	teacher, err := r.TeacherRepository.FindByID(ctx, id)
	if fn := r.afterFind; fn != nil {
		r.afterFind = nil
		fn()
	}
	return teacher, err
}

func newCachedService(t *testing.T) (TeacherService, *interleavingRepository) {
	t.Helper()
	gormDB, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, false))
	repo := &interleavingRepository{TeacherRepository: repository.NewTeacherRepository(gormDB)}
	svc := NewTeacherService(repo, nil, time.Minute, WithClock(fixedClock), WithCache(newMemoryCache()))
	return svc, repo
}

func TestTeacherService_CacheServesUpdatedRecord(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTeacher())
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)

	changed := validTeacher()
	changed.City = "Lima"
	_, err = svc.Update(ctx, created.ID, changed)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lima", got.City)
}

func TestTeacherService_ReadRacingUpdateDoesNotCacheStaleRecord(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTeacher())
	require.NoError(t, err)

	repo.afterFind = func() {
		changed := validTeacher()
		changed.City = "Lima"
		_, err := svc.Update(ctx, created.ID, changed)
		require.NoError(t, err)
	}

	// This read saw the row before the update committed.
	first, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cusco", first.City)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lima", got.City)
}

func TestTeacherService_ReadRacingDeleteDoesNotResurrectRecord(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTeacher())
	require.NoError(t, err)

	repo.afterFind = func() {
		require.NoError(t, svc.Delete(ctx, created.ID))
	}

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
