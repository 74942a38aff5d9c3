package classroom

import (
	"context"
	"errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("class not found")
	ErrStudentNotPending = errors.New("student not in pending requests")
)

// JoinAck acknowledges a join request without exposing classroom state.
type JoinAck string

const (
	JoinAckEnrolled JoinAck = "Already enrolled"
	JoinAckPending  JoinAck = "Request already pending"
	JoinAckSent     JoinAck = "Join request sent"
)

type (
	Repository interface {
		CreateClassroom(ctx context.Context, cls Classroom) (Classroom, error)
		GetClassroomByID(ctx context.Context, id string) (Classroom, error)
		GetClassroomByCode(ctx context.Context, code string) (Classroom, error)
		QueryAllClassrooms(ctx context.Context) ([]Classroom, error)
		FilterClassroomsByTeacher(ctx context.Context, teacherID string) ([]Classroom, error)
		FilterClassroomsByStudent(ctx context.Context, studentID string) ([]Classroom, error)
		// FilterPendingClassroomsByTeacher returns the teacher's classrooms
		// having a non-empty pending_requests set.
		FilterPendingClassroomsByTeacher(ctx context.Context, teacherID string) ([]Classroom, error)
		AddPendingRequest(ctx context.Context, classID, studentID string) error
		// ApproveStudent removes studentID from pending_requests and adds it to
		// students as a single atomic document update.
		ApproveStudent(ctx context.Context, classID, studentID string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, actor user.User, nc NewClassroom) (Classroom, error)
		Query(ctx context.Context, actor user.User) ([]Classroom, error)
		QueryPendingApprovals(ctx context.Context, actor user.User) ([]Classroom, error)
		GetByID(ctx context.Context, id string) (Classroom, error)
		Join(ctx context.Context, actor user.User, code string) (JoinAck, error)
		Approve(ctx context.Context, actor user.User, classID, studentID string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

// Create opens a new classroom owned by the acting teacher.
func (svc *service) Create(ctx context.Context, actor user.User, nc NewClassroom) (Classroom, error) {
	switch actor.Role {
	case user.RoleTeacher, user.RoleAdmin:
	default:
		return Classroom{}, core.ErrPermissionDenied
	}

	cls := Classroom{
		Name:            nc.Name,
		Description:     nc.Description,
		TeacherID:       actor.ID,
		ClassCode:       newClassCode(),
		Students:        []string{},
		PendingRequests: []string{},
	}
	return svc.repo.CreateClassroom(ctx, cls)
}

// Query returns the classrooms visible to the actor: all of them for an admin,
// owned ones for a teacher, enrolled ones for a student. A pending request does
// not make a classroom visible.
func (svc *service) Query(ctx context.Context, actor user.User) ([]Classroom, error) {
	switch actor.Role {
	case user.RoleAdmin:
		return svc.repo.QueryAllClassrooms(ctx)
	case user.RoleTeacher:
		return svc.repo.FilterClassroomsByTeacher(ctx, actor.ID)
	default:
		return svc.repo.FilterClassroomsByStudent(ctx, actor.ID)
	}
}

func (svc *service) QueryPendingApprovals(ctx context.Context, actor user.User) ([]Classroom, error) {
	if actor.Role != user.RoleTeacher {
		return []Classroom{}, nil
	}
	return svc.repo.FilterPendingClassroomsByTeacher(ctx, actor.ID)
}

// GetByID fetches a classroom with no membership check; students look
// classrooms up before joining.
func (svc *service) GetByID(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroomByID(ctx, id)
}

// Join files a membership request by class code. It is idempotent: an enrolled
// or already-pending student gets an acknowledgment and no state change.
func (svc *service) Join(ctx context.Context, actor user.User, code string) (JoinAck, error) {
	if actor.Role != user.RoleStudent {
		return "", core.ErrPermissionDenied
	}

	cls, err := svc.repo.GetClassroomByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if cls.HasStudent(actor.ID) {
		return JoinAckEnrolled, nil
	}
	if cls.HasPendingRequest(actor.ID) {
		return JoinAckPending, nil
	}

	if err = svc.repo.AddPendingRequest(ctx, cls.ID, actor.ID); err != nil {
		return "", err
	}
	return JoinAckSent, nil
}

// Approve moves a pending student into the classroom's member set. Only the
// owning teacher or an admin may approve.
func (svc *service) Approve(ctx context.Context, actor user.User, classID, studentID string) error {
	cls, err := svc.repo.GetClassroomByID(ctx, classID)
	if err != nil {
		return err
	}

	if cls.TeacherID != actor.ID && !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	if !cls.HasPendingRequest(studentID) {
		return ErrStudentNotPending
	}

	return svc.repo.ApproveStudent(ctx, cls.ID, studentID)
}
