package enroll

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type memRepo struct {
	mu          sync.RWMutex
	enrollments map[string]Enrollment // keyed by ID
}

var _ Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{enrollments: make(map[string]Enrollment)}
}

func (r *memRepo) CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrollments[enr.ID] = enr
	return enr, nil
}

func (r *memRepo) GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, enr := range r.enrollments {
		if enr.UserID == userID && enr.CourseID == courseID {
			return enr, nil
		}
	}
	return Enrollment{}, ErrNotFound
}

func (r *memRepo) GetEnrollmentByOrderID(ctx context.Context, orderID string) (Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, enr := range r.enrollments {
		if enr.OrderID == orderID {
			return enr, nil
		}
	}
	return Enrollment{}, ErrNotFound
}

func (r *memRepo) UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[enr.ID]; !ok {
		return Enrollment{}, ErrNotFound
	}
	r.enrollments[enr.ID] = enr
	return enr, nil
}

func (r *memRepo) QueryAllEnrollments(ctx context.Context) ([]Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Enrollment, 0, len(r.enrollments))
	for _, enr := range r.enrollments {
		all = append(all, enr)
	}
	return all, nil
}

type courseRepoStub struct {
	courses map[string]course.Course
}

var _ course.Repository = (*courseRepoStub)(nil)

func (r *courseRepoStub) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	r.courses[crs.ID] = crs
	return crs, nil
}

func (r *courseRepoStub) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	all := make([]course.Course, 0, len(r.courses))
	for _, crs := range r.courses {
		all = append(all, crs)
	}
	return all, nil
}

func (r *courseRepoStub) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if crs, ok := r.courses[id]; ok {
		return crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (r *courseRepoStub) GetCourseBySlug(ctx context.Context, slug string) (course.Course, error) {
	for _, crs := range r.courses {
		if crs.Slug == slug {
			return crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (r *courseRepoStub) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	r.courses[crs.ID] = crs
	return crs, nil
}

func (r *courseRepoStub) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.courses, id)
	}
	return nil
}

type userRepoStub struct {
	users map[string]user.User
}

var _ user.Repository = (*userRepoStub)(nil)

func (r *userRepoStub) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	return nil
}

func (r *userRepoStub) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *userRepoStub) QueryAllUsers(ctx context.Context) ([]user.User, error) { return nil, nil }

func (r *userRepoStub) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if usr, ok := r.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepoStub) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	for _, usr := range r.users {
		if usr.Username == username || usr.Email == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepoStub) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	r.users[usr.ID] = usr
	return usr, nil
}

type gatewayStub struct {
	failVerify  bool
	orderCalls  int
	lastOrderID string
}

var _ Gateway = (*gatewayStub)(nil)

func (g *gatewayStub) CreateOrder(ctx context.Context, orderID string, amount int) (string, error) {
	g.orderCalls++
	g.lastOrderID = orderID
	return "prov_" + orderID, nil
}

func (g *gatewayStub) VerifySignature(orderID, providerPaymentID, signature string) error {
	if g.failVerify {
		return ErrInvalidSignature
	}
	return nil
}

type mailSvcStub struct {
	sent []*core.EmailMessage
}

var _ core.EmailService = (*mailSvcStub)(nil)

func (s *mailSvcStub) SendMessages(messages ...*core.EmailMessage) {
	s.sent = append(s.sent, messages...)
}
