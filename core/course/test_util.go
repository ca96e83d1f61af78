package course

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// in-memory fixtures for service tests; the real implementations live in
// storage/database and storage/cache.

type memRepo struct {
	mu     sync.RWMutex
	table  map[string]Course
	failOn string // course ID whose reads/writes fail
}

var _ Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{table: make(map[string]Course)}
}

type repoErr string

func (e repoErr) Error() string { return string(e) }

func (r *memRepo) CreateCourse(_ context.Context, crs Course) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[crs.ID] = crs
	return crs, nil
}

func (r *memRepo) QueryAllCourses(context.Context) ([]Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	courses := make([]Course, 0, len(r.table))
	for _, crs := range r.table {
		courses = append(courses, crs)
	}
	return courses, nil
}

func (r *memRepo) GetCourseByID(_ context.Context, id string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == r.failOn && id != "" {
		return Course{}, repoErr("storage unavailable")
	}
	crs, ok := r.table[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return crs, nil
}

func (r *memRepo) GetCourseBySlug(_ context.Context, slug string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, crs := range r.table {
		if crs.Slug == slug {
			return crs, nil
		}
	}
	return Course{}, ErrNotFound
}

func (r *memRepo) UpdateCourse(_ context.Context, crs Course) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if crs.ID == r.failOn && crs.ID != "" {
		return Course{}, repoErr("storage unavailable")
	}
	if _, ok := r.table[crs.ID]; !ok {
		return Course{}, ErrNotFound
	}
	r.table[crs.ID] = crs
	return crs, nil
}

func (r *memRepo) DeleteCoursesByID(_ context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.table, id)
	}
	return nil
}

type noopCache struct{}

var _ Cache = (*noopCache)(nil)

func (noopCache) GetCourse(context.Context, string) (Course, bool) { return Course{}, false }
func (noopCache) SetCourse(context.Context, Course)                {}
func (noopCache) DeleteCourse(context.Context, string)             {}

// cacheSpy is a working in-memory cache that records invalidations.
type cacheSpy struct {
	mu      sync.Mutex
	entries map[string]Course
	deletes []string
}

var _ Cache = (*cacheSpy)(nil)

func newCacheSpy() *cacheSpy {
	return &cacheSpy{entries: make(map[string]Course)}
}

func (c *cacheSpy) GetCourse(_ context.Context, id string) (Course, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	crs, ok := c.entries[id]
	return crs, ok
}

func (c *cacheSpy) SetCourse(_ context.Context, crs Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[crs.ID] = crs
}

func (c *cacheSpy) DeleteCourse(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deletes = append(c.deletes, id)
}

func (c *cacheSpy) deleteCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.deletes {
		if d == id {
			n++
		}
	}
	return n
}

type staticAccess bool

var _ AccessChecker = staticAccess(false)

func (a staticAccess) HasVerifiedAccess(context.Context, string, string) (bool, error) {
	return bool(a), nil
}

type testLogger struct{ t *testing.T }

func (l testLogger) Enable(bool)                            {}
func (l testLogger) Debug(msg string, args ...interface{})  { l.t.Logf("DEBUG %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})   { l.t.Logf("INFO %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})   { l.t.Logf("WARN %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{})  { l.t.Logf("ERROR %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{})  { l.t.Fatalf("FATAL %s %v", msg, args) }

func setupService(t *testing.T, access bool) (Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo, noopCache{}, staticAccess(access), testLogger{t})
	return svc, repo
}

func createCourse(t *testing.T, repo *memRepo, title string, price int, published bool, content []*Category, videos []Video) Course {
	now := time.Now().UTC()
	crs := Course{
		ID:          uuid.New().String(),
		Title:       title,
		Price:       price,
		IsPublished: published,
		Content:     content,
		Videos:      videos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func video(id, title string) Video {
	return Video{ID: id, Title: title, SourceURL: "https://media.local/" + id + ".mp4"}
}
