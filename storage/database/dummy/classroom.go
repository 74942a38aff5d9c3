package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core/classroom"
)

type classroomRepository struct {
	db *classroomTable
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db.classroom}
}

func (repo *classroomRepository) query(match func(*classroom.Classroom) bool) []classroom.Classroom {
	clss := make([]classroom.Classroom, 0)
	for _, cls := range repo.db.table {
		if len(clss) == maxResults {
			break
		}
		if match(cls) {
			clss = append(clss, copyClassroom(cls))
		}
	}
	return clss
}

func (repo *classroomRepository) CreateClassroom(_ context.Context, cls classroom.Classroom) (classroom.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls.ID = nextID(&repo.db.seq)
	stored := copyClassroom(&cls)
	repo.db.table[cls.ID] = &stored
	return cls, nil
}

func (repo *classroomRepository) GetClassroomByID(_ context.Context, id string) (classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.table[id]; ok {
		return copyClassroom(cls), nil
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) GetClassroomByCode(_ context.Context, code string) (classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cls := range repo.db.table {
		if cls.ClassCode == code {
			return copyClassroom(cls), nil
		}
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) QueryAllClassrooms(_ context.Context) ([]classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(*classroom.Classroom) bool { return true }), nil
}

func (repo *classroomRepository) FilterClassroomsByTeacher(_ context.Context, teacherID string) ([]classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(cls *classroom.Classroom) bool { return cls.TeacherID == teacherID }), nil
}

func (repo *classroomRepository) FilterClassroomsByStudent(_ context.Context, studentID string) ([]classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(cls *classroom.Classroom) bool { return cls.HasStudent(studentID) }), nil
}

func (repo *classroomRepository) FilterPendingClassroomsByTeacher(_ context.Context, teacherID string) ([]classroom.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(cls *classroom.Classroom) bool {
		return cls.TeacherID == teacherID && len(cls.PendingRequests) > 0
	}), nil
}

func (repo *classroomRepository) AddPendingRequest(_ context.Context, classID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classID]
	if !ok {
		return classroom.ErrNotFound
	}
	if !cls.HasPendingRequest(studentID) {
		cls.PendingRequests = append(cls.PendingRequests, studentID)
	}
	return nil
}

func (repo *classroomRepository) ApproveStudent(_ context.Context, classID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls, ok := repo.db.table[classID]
	if !ok {
		return classroom.ErrNotFound
	}
	if !cls.HasPendingRequest(studentID) {
		return classroom.ErrStudentNotPending
	}

	pending := cls.PendingRequests[:0]
	for _, id := range cls.PendingRequests {
		if id != studentID {
			pending = append(pending, id)
		}
	}
	cls.PendingRequests = pending
	cls.Students = append(cls.Students, studentID)
	return nil
}

func copyClassroom(cls *classroom.Classroom) classroom.Classroom {
	cp := *cls
	cp.Students = append([]string{}, cls.Students...)
	cp.PendingRequests = append([]string{}, cls.PendingRequests...)
	return cp
}
