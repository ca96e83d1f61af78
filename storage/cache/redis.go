package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

const courseTTL = 10 * time.Minute

// CourseCache keeps whole course documents in redis. Misses and redis
// failures both read as a miss; the service falls back to the database.
type CourseCache struct {
	client *redis.Client
}

var _ course.Cache = (*CourseCache)(nil) // interface compliance check

func NewCourseCache(client *redis.Client) *CourseCache {
	return &CourseCache{client: client}
}

func NewClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

func (c *CourseCache) GetCourse(ctx context.Context, id string) (course.Course, bool) {
	data, err := c.client.Get(ctx, "course:"+id).Bytes()
	if err != nil {
		return course.Course{}, false
	}
	var crs course.Course
	if err := json.Unmarshal(data, &crs); err != nil {
		return course.Course{}, false
	}
	return crs, true
}

func (c *CourseCache) SetCourse(ctx context.Context, crs course.Course) {
	data, err := json.Marshal(crs)
	if err != nil {
		return
	}
	c.client.Set(ctx, "course:"+crs.ID, data, courseTTL)
}

func (c *CourseCache) DeleteCourse(ctx context.Context, id string) {
	c.client.Del(ctx, "course:"+id)
}
