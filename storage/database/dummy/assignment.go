package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg.ID = nextID(&repo.db.seq)
	repo.db.table[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asg, ok := repo.db.table[id]; ok {
		return *asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) FilterAssignmentsByClass(_ context.Context, classID string) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgs := make([]assignment.Assignment, 0)
	for _, asg := range repo.db.table {
		if len(asgs) == maxResults {
			break
		}
		if asg.ClassID == classID {
			asgs = append(asgs, *asg)
		}
	}
	return asgs, nil
}

func (repo *assignmentRepository) CreateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = nextID(&repo.db.subSeq)
	repo.db.subs[sub.ID] = &sub
	return sub, nil
}

func (repo *assignmentRepository) FilterSubmissionsByAssignment(_ context.Context, assignmentID string) ([]assignment.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]assignment.Submission, 0)
	for _, sub := range repo.db.subs {
		if len(subs) == maxResults {
			break
		}
		if sub.AssignmentID == assignmentID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}
