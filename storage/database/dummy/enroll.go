package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/enroll"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enroll.Repository {
	return &enrollmentRepository{db: db.enroll}
}

func (repo *enrollmentRepository) query() []enroll.Enrollment {
	enrollments := make([]enroll.Enrollment, 0, len(repo.db.table))
	for _, enr := range repo.db.table {
		enrollments = append(enrollments, *enr)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CreatedAt.Before(enrollments[j].CreatedAt) })
	return enrollments
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID string) (enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.table {
		if enr.UserID == userID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollmentRepository) GetEnrollmentByOrderID(ctx context.Context, orderID string) (enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.table {
		if enr.OrderID == orderID {
			return *enr, nil
		}
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.ID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) QueryAllEnrollments(ctx context.Context) ([]enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}
