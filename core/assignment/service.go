package assignment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		FilterAssignmentsByClass(ctx context.Context, classID string) ([]Assignment, error)
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		FilterSubmissionsByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, actor user.User, na NewAssignment) (Assignment, error)
		QueryByClass(ctx context.Context, actor user.User, classID string) ([]Assignment, error)
		Submit(ctx context.Context, actor user.User, assignmentID, filename string, src io.Reader) error
		QuerySubmissions(ctx context.Context, actor user.User, assignmentID string) ([]Submission, error)
	}

	service struct {
		repo    Repository
		clsRepo classroom.Repository
		files   core.FileStore
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, clsRepo classroom.Repository, files core.FileStore) ServiceInterface {
	return &service{
		repo:    repo,
		clsRepo: clsRepo,
		files:   files,
	}
}

// Create posts a new assignment to a classroom owned by the acting teacher.
func (svc *service) Create(ctx context.Context, actor user.User, na NewAssignment) (Assignment, error) {
	switch actor.Role {
	case user.RoleTeacher, user.RoleAdmin:
	default:
		return Assignment{}, core.ErrPermissionDenied
	}

	cls, err := svc.clsRepo.GetClassroomByID(ctx, na.ClassID)
	if err != nil {
		return Assignment{}, err
	}
	if cls.TeacherID != actor.ID && !actor.IsAdmin() {
		return Assignment{}, core.ErrPermissionDenied
	}

	asg := Assignment{
		ClassID:     na.ClassID,
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

// QueryByClass lists a classroom's assignments for its members, its owning
// teacher or an admin.
func (svc *service) QueryByClass(ctx context.Context, actor user.User, classID string) ([]Assignment, error) {
	cls, err := svc.clsRepo.GetClassroomByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !cls.HasStudent(actor.ID) && cls.TeacherID != actor.ID && !actor.IsAdmin() {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.FilterAssignmentsByClass(ctx, classID)
}

// Submit stores a student's file and appends a submission record. The storage
// key is derived from {assignment, student, filename}; a re-submission with the
// same filename overwrites the stored file while its record is still appended.
// Only the filename's base is used so a crafted name cannot escape the store's
// root.
func (svc *service) Submit(ctx context.Context, actor user.User, assignmentID, filename string, src io.Reader) error {
	if actor.Role != user.RoleStudent {
		return core.ErrPermissionDenied
	}

	asg, err := svc.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s_%s_%s", asg.ID, actor.ID, filepath.Base(filename))
	path, err := svc.files.Save(ctx, key, src)
	if err != nil {
		return err
	}

	sub := Submission{
		AssignmentID: asg.ID,
		StudentID:    actor.ID,
		FilePath:     path,
		Filename:     filename,
		SubmittedAt:  time.Now().UTC(),
	}
	_, err = svc.repo.CreateSubmission(ctx, sub)
	return err
}

// QuerySubmissions lists an assignment's submissions for teachers and admins.
func (svc *service) QuerySubmissions(ctx context.Context, actor user.User, assignmentID string) ([]Submission, error) {
	switch actor.Role {
	case user.RoleTeacher, user.RoleAdmin:
	default:
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.FilterSubmissionsByAssignment(ctx, assignmentID)
}
