package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/enroll"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
		enroll *enrollmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enroll.Enrollment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		course: &courseTable{table: make(map[string]*course.Course)},
		enroll: &enrollmentTable{table: make(map[string]*enroll.Enrollment)},
	}
	return db, nil
}
