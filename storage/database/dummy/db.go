package dummydb

import (
	"strconv"
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		classroom  *classroomTable
		assignment *assignmentTable
	}

	userTable struct {
		sync.RWMutex
		seq   int
		table map[string]*user.User
	}

	classroomTable struct {
		sync.RWMutex
		seq   int
		table map[string]*classroom.Classroom
	}

	assignmentTable struct {
		sync.RWMutex
		seq    int
		subSeq int
		table  map[string]*assignment.Assignment
		subs   map[string]*assignment.Submission
	}
)

// maxResults caps every multi-document query, like the mongo backend.
const maxResults = 100

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		classroom: &classroomTable{table: make(map[string]*classroom.Classroom)},
		assignment: &assignmentTable{
			table: make(map[string]*assignment.Assignment),
			subs:  make(map[string]*assignment.Submission),
		},
	}
	return db, nil
}

func nextID(seq *int) string {
	*seq++
	return strconv.Itoa(*seq)
}
