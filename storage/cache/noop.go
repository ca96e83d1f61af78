package cache

import (
	"context"

	"github.com/trezcool/darasa/core/course"
)

// NoopCourseCache never hits; useful in tests and when redis is not configured.
type NoopCourseCache struct{}

var _ course.Cache = NoopCourseCache{} // interface compliance check

func (NoopCourseCache) GetCourse(ctx context.Context, id string) (course.Course, bool) {
	return course.Course{}, false
}

func (NoopCourseCache) SetCourse(ctx context.Context, crs course.Course) {}

func (NoopCourseCache) DeleteCourse(ctx context.Context, id string) {}
