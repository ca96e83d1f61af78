package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	. "github.com/trezcool/darasa/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/enroll"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	paymentsvc "github.com/trezcool/darasa/services/payment"
	"github.com/trezcool/darasa/storage/cache"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

const gatewaySecret = "test-gateway-secret"

type testApp struct {
	server  Server
	usrRepo user.Repository
	usrSvc  user.Service
	crsSvc  course.Service
	gateway *paymentsvc.HMACGateway
	files   *fileStoreStub
}

// fileStoreStub records saved uploads and hands back a fake URL.
type fileStoreStub struct {
	saved []string
}

var _ core.FileStore = (*fileStoreStub)(nil)

func (fs *fileStoreStub) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	fs.saved = append(fs.saved, filename)
	return "http://localhost:8000/media/" + filename, nil
}

type testLogger struct{ t *testing.T }

func (l testLogger) Enable(bool)                          {}
func (l testLogger) Debug(msg string, args ...interface{}) {}
func (l testLogger) Info(msg string, args ...interface{})  {}
func (l testLogger) Warn(msg string, args ...interface{})  {}
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Logf("FATAL: %s %v", msg, args) }

var _ core.Logger = testLogger{}

func setup(t *testing.T) *testApp {
	t.Helper()
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	enrRepo := dummydb.NewEnrollmentRepository(db)

	logger := testLogger{t}
	mailSvc := emailsvc.NewConsoleServiceMock()
	gateway := paymentsvc.NewHMACGateway(gatewaySecret)

	usrSvc := user.NewService(usrRepo)
	enrSvc := enroll.NewService(enrRepo, crsRepo, usrRepo, gateway, mailSvc)
	crsSvc := course.NewService(crsRepo, cache.NoopCourseCache{}, enrSvc, logger)

	files := &fileStoreStub{}
	server := NewServer(&Options{
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		CourseSvc:      crsSvc,
		EnrollSvc:      enrSvc,
		FileStore:      files,
		Logger:         logger,
	})
	return &testApp{server: server, usrRepo: usrRepo, usrSvc: usrSvc, crsSvc: crsSvc, gateway: gateway, files: files}
}

type httpErr struct {
	Error string `json:"error"`
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

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.server.ServeHTTP(rec, req)
	return rec
}

func createUser(t *testing.T, app *testApp, name, uname, email string, roles []string) user.User {
	t.Helper()
	usr := user.User{
		ID:       uuid.New().String(),
		Name:     name,
		Username: uname,
		Email:    email,
		IsActive: true,
		Roles:    roles,
	}
	if err := usr.SetPassword("V3ryStr0ngPwd!"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}
