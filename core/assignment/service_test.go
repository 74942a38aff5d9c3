package assignment_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	"github.com/trezcool/darasa/storage/uploads"
)

type testEnv struct {
	svc       assignment.ServiceInterface
	repo      assignment.Repository
	clsRepo   classroom.Repository
	uploadDir string
}

func initSvc(t *testing.T) *testEnv {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("initSvc(): %v", err)
	}
	dir := t.TempDir()
	files, err := uploads.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("initSvc(): %v", err)
	}
	repo := dummydb.NewAssignmentRepository(db)
	clsRepo := dummydb.NewClassroomRepository(db)
	return &testEnv{
		svc:       assignment.NewService(repo, clsRepo, files),
		repo:      repo,
		clsRepo:   clsRepo,
		uploadDir: dir,
	}
}

func (env *testEnv) createClassroom(t *testing.T, teacher user.User, members ...user.User) classroom.Classroom {
	cls := classroom.Classroom{
		Name:            "Maths",
		TeacherID:       teacher.ID,
		ClassCode:       "ab12cd34",
		Students:        []string{},
		PendingRequests: []string{},
	}
	for _, m := range members {
		cls.Students = append(cls.Students, m.ID)
	}
	cls, err := env.clsRepo.CreateClassroom(context.Background(), cls)
	if err != nil {
		t.Fatalf("createClassroom(): %v", err)
	}
	return cls
}

func Test_service_Create(t *testing.T) {
	env := initSvc(t)
	ctx := context.Background()
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}
	rival := user.User{ID: "t2", Role: user.RoleTeacher}
	admin := user.User{ID: "a1", Role: user.RoleAdmin}
	student := user.User{ID: "s1", Role: user.RoleStudent}
	maths := env.createClassroom(t, teacher)

	_, err := env.svc.Create(ctx, student, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra I"})
	assert.Equal(t, core.ErrPermissionDenied, err)

	_, err = env.svc.Create(ctx, rival, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra I"})
	assert.Equal(t, core.ErrPermissionDenied, err)

	_, err = env.svc.Create(ctx, teacher, assignment.NewAssignment{ClassID: "404", Title: "Algebra I"})
	assert.Equal(t, classroom.ErrNotFound, err)

	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	asg, err := env.svc.Create(ctx, teacher, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra I", DueDate: &due})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	assert.NotEmpty(t, asg.ID)
	assert.Equal(t, maths.ID, asg.ClassID)
	assert.Equal(t, &due, asg.DueDate)
	assert.False(t, asg.CreatedAt.IsZero())

	// admins may post to any classroom
	if _, err = env.svc.Create(ctx, admin, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra II"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}
}

func Test_service_QueryByClass(t *testing.T) {
	env := initSvc(t)
	ctx := context.Background()
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}
	rival := user.User{ID: "t2", Role: user.RoleTeacher}
	admin := user.User{ID: "a1", Role: user.RoleAdmin}
	member := user.User{ID: "s1", Role: user.RoleStudent}
	outsider := user.User{ID: "s2", Role: user.RoleStudent}
	maths := env.createClassroom(t, teacher, member)

	if _, err := env.svc.Create(ctx, teacher, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra I"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	_, err := env.svc.QueryByClass(ctx, teacher, "404")
	assert.Equal(t, classroom.ErrNotFound, err)

	_, err = env.svc.QueryByClass(ctx, outsider, maths.ID)
	assert.Equal(t, core.ErrPermissionDenied, err)

	_, err = env.svc.QueryByClass(ctx, rival, maths.ID)
	assert.Equal(t, core.ErrPermissionDenied, err)

	for _, actor := range []user.User{member, teacher, admin} {
		asgs, err := env.svc.QueryByClass(ctx, actor, maths.ID)
		if err != nil {
			t.Fatalf("QueryByClass(%v): %v", actor.Role, err)
		}
		assert.Len(t, asgs, 1)
	}
}

func Test_service_Submit(t *testing.T) {
	env := initSvc(t)
	ctx := context.Background()
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}
	student := user.User{ID: "s1", Role: user.RoleStudent}
	maths := env.createClassroom(t, teacher, student)

	asg, err := env.svc.Create(ctx, teacher, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra I"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	err = env.svc.Submit(ctx, teacher, asg.ID, "hw.pdf", bytes.NewReader([]byte("answers")))
	assert.Equal(t, core.ErrPermissionDenied, err)

	err = env.svc.Submit(ctx, student, "404", "hw.pdf", bytes.NewReader([]byte("answers")))
	assert.Equal(t, assignment.ErrNotFound, err)

	if err = env.svc.Submit(ctx, student, asg.ID, "hw.pdf", bytes.NewReader([]byte("answers"))); err != nil {
		t.Fatalf("Submit(): %v", err)
	}

	subs, err := env.repo.FilterSubmissionsByAssignment(ctx, asg.ID)
	if err != nil {
		t.Fatalf("FilterSubmissionsByAssignment(): %v", err)
	}
	if assert.Len(t, subs, 1) {
		assert.Equal(t, student.ID, subs[0].StudentID)
		assert.Equal(t, "hw.pdf", subs[0].Filename)
		assert.False(t, subs[0].SubmittedAt.IsZero())

		wantPath := filepath.Join(env.uploadDir, asg.ID+"_"+student.ID+"_hw.pdf")
		assert.Equal(t, wantPath, subs[0].FilePath)
		content, err := os.ReadFile(wantPath)
		if err != nil {
			t.Fatalf("reading stored upload: %v", err)
		}
		assert.Equal(t, []byte("answers"), content)
	}

	// resubmitting the same filename overwrites the file and appends a record
	if err = env.svc.Submit(ctx, student, asg.ID, "hw.pdf", bytes.NewReader([]byte("better answers"))); err != nil {
		t.Fatalf("Submit(): %v", err)
	}
	subs, err = env.repo.FilterSubmissionsByAssignment(ctx, asg.ID)
	if err != nil {
		t.Fatalf("FilterSubmissionsByAssignment(): %v", err)
	}
	if assert.Len(t, subs, 2) {
		content, err := os.ReadFile(filepath.Join(env.uploadDir, asg.ID+"_"+student.ID+"_hw.pdf"))
		if err != nil {
			t.Fatalf("reading stored upload: %v", err)
		}
		assert.Equal(t, []byte("better answers"), content)
	}

	// a filename carrying path separators stays inside the upload dir
	if err = env.svc.Submit(ctx, student, asg.ID, "../../escape.txt", bytes.NewReader([]byte("out"))); err != nil {
		t.Fatalf("Submit(): %v", err)
	}
	content, err := os.ReadFile(filepath.Join(env.uploadDir, asg.ID+"_"+student.ID+"_escape.txt"))
	if err != nil {
		t.Fatalf("reading stored upload: %v", err)
	}
	assert.Equal(t, []byte("out"), content)
}

func Test_service_resultCaps(t *testing.T) {
	env := initSvc(t)
	ctx := context.Background()
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}
	student := user.User{ID: "s1", Role: user.RoleStudent}
	maths := env.createClassroom(t, teacher, student)

	for i := 0; i < 150; i++ {
		asg := assignment.Assignment{ClassID: maths.ID, Title: "Homework", CreatedAt: time.Now().UTC()}
		if _, err := env.repo.CreateAssignment(ctx, asg); err != nil {
			t.Fatalf("CreateAssignment(): %v", err)
		}
	}
	asgs, err := env.svc.QueryByClass(ctx, teacher, maths.ID)
	if err != nil {
		t.Fatalf("QueryByClass(): %v", err)
	}
	assert.Len(t, asgs, 100)

	target := assignment.Assignment{ClassID: maths.ID, Title: "Capped", CreatedAt: time.Now().UTC()}
	target, err = env.repo.CreateAssignment(ctx, target)
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}
	for i := 0; i < 120; i++ {
		sub := assignment.Submission{AssignmentID: target.ID, StudentID: student.ID, Filename: "hw.pdf"}
		if _, err = env.repo.CreateSubmission(ctx, sub); err != nil {
			t.Fatalf("CreateSubmission(): %v", err)
		}
	}
	subs, err := env.svc.QuerySubmissions(ctx, teacher, target.ID)
	if err != nil {
		t.Fatalf("QuerySubmissions(): %v", err)
	}
	assert.Len(t, subs, 100)
}

func Test_service_QuerySubmissions(t *testing.T) {
	env := initSvc(t)
	ctx := context.Background()
	teacher := user.User{ID: "t1", Role: user.RoleTeacher}
	student := user.User{ID: "s1", Role: user.RoleStudent}
	maths := env.createClassroom(t, teacher, student)

	asg, err := env.svc.Create(ctx, teacher, assignment.NewAssignment{ClassID: maths.ID, Title: "Algebra I"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if err = env.svc.Submit(ctx, student, asg.ID, "hw.pdf", bytes.NewReader([]byte("answers"))); err != nil {
		t.Fatalf("Submit(): %v", err)
	}

	_, err = env.svc.QuerySubmissions(ctx, student, asg.ID)
	assert.Equal(t, core.ErrPermissionDenied, err)

	subs, err := env.svc.QuerySubmissions(ctx, teacher, asg.ID)
	if err != nil {
		t.Fatalf("QuerySubmissions(): %v", err)
	}
	assert.Len(t, subs, 1)
}
