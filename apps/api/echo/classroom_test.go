package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
)

func Test_classroomApi_create(t *testing.T) {
	app := initApp(t)
	student := app.createUser(t, "stu@test.cd", "", user.RoleStudent)
	teacher := app.createUser(t, "tea@test.cd", "", user.RoleTeacher)
	admin := app.createUser(t, "adm@test.cd", "", user.RoleAdmin)

	ghost := user.User{ID: "404", Email: "gone@test.cd", Role: user.RoleStudent}

	tests := []httpTest{
		{
			name:     "student cannot create",
			token:    app.getToken(t, student),
			body:     []byte(`{"name": "Maths"}`),
			wantCode: http.StatusForbidden,
		},
		{
			// the subject is resolved before the role check, so a vanished
			// account is unauthenticated rather than forbidden
			name:     "subject no longer exists",
			token:    app.getToken(t, ghost),
			body:     []byte(`{"name": "Maths"}`),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "name required",
			token:    app.getToken(t, teacher),
			body:     []byte(`{"description": "no name"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "teacher ok",
			token:    app.getToken(t, teacher),
			body:     []byte(`{"name": "Maths", "description": "Numbers & stuff"}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "admin ok",
			token:    app.getToken(t, admin),
			body:     []byte(`{"name": "Physics"}`),
			wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/classes", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)

			checkCodeAndData(t, tt, rec)
			if rec.Code == http.StatusCreated {
				var cls classroom.Classroom
				if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
					t.Fatalf("unmarshalling Classroom: %v", err)
				}
				assert.Len(t, cls.ClassCode, 8)
				assert.Empty(t, cls.Students)
				assert.Empty(t, cls.PendingRequests)
			}
		})
	}
}

func Test_classroomApi_query(t *testing.T) {
	app := initApp(t)
	student := app.createUser(t, "stu@test.cd", "", user.RoleStudent)
	pending := app.createUser(t, "pending@test.cd", "", user.RoleStudent)
	teacher := app.createUser(t, "tea@test.cd", "", user.RoleTeacher)
	teacher2 := app.createUser(t, "tea2@test.cd", "", user.RoleTeacher)
	admin := app.createUser(t, "adm@test.cd", "", user.RoleAdmin)

	maths := app.createClassroom(t, teacher, "Maths", "ab12cd34")
	bio := app.createClassroom(t, teacher2, "Biology", "ef56ab78")

	ctx := context.Background()
	if err := app.clsRepo.AddPendingRequest(ctx, maths.ID, student.ID); err != nil {
		t.Fatalf("AddPendingRequest(): %v", err)
	}
	if err := app.clsRepo.ApproveStudent(ctx, maths.ID, student.ID); err != nil {
		t.Fatalf("ApproveStudent(): %v", err)
	}
	if err := app.clsRepo.AddPendingRequest(ctx, bio.ID, pending.ID); err != nil {
		t.Fatalf("AddPendingRequest(): %v", err)
	}

	tests := []httpTest{
		{name: "admin sees all", token: app.getToken(t, admin), extra: 2},
		{name: "teacher sees owned", token: app.getToken(t, teacher), extra: 1},
		{name: "member sees enrolled", token: app.getToken(t, student), extra: 1},
		{name: "pending is invisible", token: app.getToken(t, pending), extra: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/classes", tt.token)
			app.server.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusOK)
			}
			var clss []classroom.Classroom
			if err := json.Unmarshal(rec.Body.Bytes(), &clss); err != nil {
				t.Fatalf("unmarshalling []Classroom: %v", err)
			}
			assert.Len(t, clss, tt.extra.(int))
		})
	}
}

func Test_classroomApi_queryPendingApprovals(t *testing.T) {
	app := initApp(t)
	student := app.createUser(t, "stu@test.cd", "", user.RoleStudent)
	teacher := app.createUser(t, "tea@test.cd", "", user.RoleTeacher)

	quiet := app.createClassroom(t, teacher, "Quiet", "aaaa1111")
	busy := app.createClassroom(t, teacher, "Busy", "bbbb2222")
	if err := app.clsRepo.AddPendingRequest(context.Background(), busy.ID, student.ID); err != nil {
		t.Fatalf("AddPendingRequest(): %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/classes/pending", app.getToken(t, teacher))
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusOK)
	}
	var clss []classroom.Classroom
	if err := json.Unmarshal(rec.Body.Bytes(), &clss); err != nil {
		t.Fatalf("unmarshalling []Classroom: %v", err)
	}
	if assert.Len(t, clss, 1) {
		assert.Equal(t, busy.ID, clss[0].ID)
		assert.NotEqual(t, quiet.ID, clss[0].ID)
	}
}

func Test_classroomApi_retrieve(t *testing.T) {
	app := initApp(t)
	student := app.createUser(t, "stu@test.cd", "", user.RoleStudent)
	teacher := app.createUser(t, "tea@test.cd", "", user.RoleTeacher)
	maths := app.createClassroom(t, teacher, "Maths", "ab12cd34")

	tests := []httpTest{
		{
			name:     "not found",
			path:     "/v1/classes/404",
			token:    app.getToken(t, student),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: classroom.ErrNotFound.Error()}),
		},
		{
			// any authenticated user may fetch any classroom by id;
			// students look classes up before joining
			name:     "non-member can read",
			path:     "/v1/classes/" + maths.ID,
			token:    app.getToken(t, student),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, maths),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_classroomApi_join(t *testing.T) {
	app := initApp(t)
	student := app.createUser(t, "stu@test.cd", "", user.RoleStudent)
	enrolled := app.createUser(t, "member@test.cd", "", user.RoleStudent)
	teacher := app.createUser(t, "tea@test.cd", "", user.RoleTeacher)

	maths := app.createClassroom(t, teacher, "Maths", "ab12cd34")
	ctx := context.Background()
	if err := app.clsRepo.AddPendingRequest(ctx, maths.ID, enrolled.ID); err != nil {
		t.Fatalf("AddPendingRequest(): %v", err)
	}
	if err := app.clsRepo.ApproveStudent(ctx, maths.ID, enrolled.ID); err != nil {
		t.Fatalf("ApproveStudent(): %v", err)
	}

	ack := func(msg classroom.JoinAck) []byte {
		return marchallObj(t, map[string]string{"message": string(msg)})
	}

	tests := []httpTest{
		{
			name:     "teacher cannot join",
			token:    app.getToken(t, teacher),
			body:     []byte(`{"class_code": "ab12cd34"}`),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown code",
			token:    app.getToken(t, student),
			body:     []byte(`{"class_code": "nope0000"}`),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "request sent",
			token:    app.getToken(t, student),
			body:     []byte(`{"class_code": "ab12cd34"}`),
			wantCode: http.StatusOK,
			wantData: ack(classroom.JoinAckSent),
		},
		{
			name:     "second join is a no-op",
			token:    app.getToken(t, student),
			body:     []byte(`{"class_code": "ab12cd34"}`),
			wantCode: http.StatusOK,
			wantData: ack(classroom.JoinAckPending),
		},
		{
			name:     "already enrolled",
			token:    app.getToken(t, enrolled),
			body:     []byte(`{"class_code": "ab12cd34"}`),
			wantCode: http.StatusOK,
			wantData: ack(classroom.JoinAckEnrolled),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/classes/join", tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// exactly one pending copy of the student id
	cls, err := app.clsRepo.GetClassroomByID(ctx, maths.ID)
	if err != nil {
		t.Fatalf("GetClassroomByID(): %v", err)
	}
	assert.Equal(t, []string{student.ID}, cls.PendingRequests)
	assert.Equal(t, []string{enrolled.ID}, cls.Students)
}

func Test_classroomApi_approveStudent(t *testing.T) {
	app := initApp(t)
	student := app.createUser(t, "stu@test.cd", "", user.RoleStudent)
	teacher := app.createUser(t, "tea@test.cd", "", user.RoleTeacher)
	rival := app.createUser(t, "rival@test.cd", "", user.RoleTeacher)
	admin := app.createUser(t, "adm@test.cd", "", user.RoleAdmin)

	maths := app.createClassroom(t, teacher, "Maths", "ab12cd34")
	bio := app.createClassroom(t, teacher, "Biology", "ef56ab78")
	ctx := context.Background()
	if err := app.clsRepo.AddPendingRequest(ctx, maths.ID, student.ID); err != nil {
		t.Fatalf("AddPendingRequest(): %v", err)
	}
	if err := app.clsRepo.AddPendingRequest(ctx, bio.ID, student.ID); err != nil {
		t.Fatalf("AddPendingRequest(): %v", err)
	}

	tests := []httpTest{
		{
			name:     "student_id required",
			path:     "/v1/classes/" + maths.ID + "/approve",
			token:    app.getToken(t, teacher),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "class not found",
			path:     "/v1/classes/404/approve?student_id=" + student.ID,
			token:    app.getToken(t, teacher),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "not the owning teacher",
			path:     "/v1/classes/" + maths.ID + "/approve?student_id=" + student.ID,
			token:    app.getToken(t, rival),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "owner approves",
			path:     "/v1/classes/" + maths.ID + "/approve?student_id=" + student.ID,
			token:    app.getToken(t, teacher),
			wantCode: http.StatusOK,
		},
		{
			name:     "not pending anymore",
			path:     "/v1/classes/" + maths.ID + "/approve?student_id=" + student.ID,
			token:    app.getToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: classroom.ErrStudentNotPending.Error()}),
		},
		{
			name:     "admin may approve anywhere",
			path:     "/v1/classes/" + bio.ID + "/approve?student_id=" + student.ID,
			token:    app.getToken(t, admin),
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	cls, err := app.clsRepo.GetClassroomByID(ctx, maths.ID)
	if err != nil {
		t.Fatalf("GetClassroomByID(): %v", err)
	}
	assert.Equal(t, []string{student.ID}, cls.Students)
	assert.Empty(t, cls.PendingRequests)
}
