package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	"github.com/trezcool/darasa/storage/uploads"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type testApp struct {
	server Server
	auth   *jwtAuth
	conf   *core.Config

	usrRepo user.Repository
	clsRepo classroom.Repository
	asgRepo assignment.Repository

	usrSvc user.ServiceInterface
	clsSvc classroom.ServiceInterface
	asgSvc assignment.ServiceInterface
}

func initApp(t *testing.T) *testApp {
	conf := testConfig(t)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("initApp(): %v", err)
	}

	fileStore, err := uploads.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		t.Fatalf("initApp(): %v", err)
	}

	usrRepo := dummydb.NewUserRepository(db)
	clsRepo := dummydb.NewClassroomRepository(db)
	asgRepo := dummydb.NewAssignmentRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	clsSvc := classroom.NewService(clsRepo)
	asgSvc := assignment.NewService(asgRepo, clsRepo, fileStore)

	validate, translator := core.NewValidator()

	app := &testApp{
		auth:    newJWTAuth(conf),
		conf:    conf,
		usrRepo: usrRepo,
		clsRepo: clsRepo,
		asgRepo: asgRepo,
		usrSvc:  usrSvc,
		clsSvc:  clsSvc,
		asgSvc:  asgSvc,
	}
	app.server = NewServer(&Options{
		Conf:           conf,
		Logger:         logsvc.NewStdLogger(testLogger(t)),
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		ClassroomSvc:   clsSvc,
		AssignmentSvc:  asgSvc,
		DisableReqLogs: true,
	})
	return app
}

func testLogger(_ *testing.T) *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testConfig(t *testing.T) *core.Config {
	return &core.Config{
		TestMode:       true,
		Env:            "TEST",
		AppName:        "Darasa",
		SecretKey:      []byte("secret"),
		AdminSecretKey: "MASTER_KEY",
		Server: core.ServerConfig{
			JWTExpirationDelta: 10 * time.Minute,
		},
		Uploads: core.UploadsConfig{
			Backend: "local",
			Dir:     t.TempDir(),
		},
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := app.auth.GenerateToken(app.auth.GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (app *testApp) getExpiredToken(t *testing.T, usr user.User) string {
	claims := app.auth.GetUserClaims(usr)
	claims.IssuedAt = time.Now().Add(-1 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-30 * time.Minute).Unix()
	token, err := app.auth.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getExpiredToken(): %v", err)
	}
	return token
}

func (app *testApp) createUser(t *testing.T, email, pwd string, role user.Role) user.User {
	usr := user.User{
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser(): %v", err)
		}
	}
	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func (app *testApp) createClassroom(t *testing.T, teacher user.User, name, code string) classroom.Classroom {
	cls := classroom.Classroom{
		Name:            name,
		TeacherID:       teacher.ID,
		ClassCode:       code,
		Students:        []string{},
		PendingRequests: []string{},
	}
	cls, err := app.clsRepo.CreateClassroom(context.Background(), cls)
	if err != nil {
		t.Fatalf("createClassroom(): %v", err)
	}
	return cls
}

func (app *testApp) createAssignment(t *testing.T, cls classroom.Classroom, title string) assignment.Assignment {
	asg := assignment.Assignment{
		ClassID:   cls.ID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	asg, err := app.asgRepo.CreateAssignment(context.Background(), asg)
	if err != nil {
		t.Fatalf("createAssignment(): %v", err)
	}
	return asg
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
