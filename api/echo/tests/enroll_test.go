package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/enroll"
	"github.com/trezcool/darasa/core/user"
)

func Test_enrollApi_paidFlow(t *testing.T) {
	app := setup(t)
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})
	studentToken := getToken(t, student)

	paid := seedCourse(t, app, "Paid Course", 4999, true)
	vid := seedVideo(t, app, paid.ID)
	videoPath := "/v1/courses/" + paid.ID + "/videos/" + vid.ID

	// enrollment requires auth
	req, rec := newRequest(http.MethodPost, "/v1/enrollments",
		marshallObj(t, enroll.NewEnrollment{CourseID: paid.ID}))
	app.do(req, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// paid enrollment starts pending
	req, rec = newAuthRequest(http.MethodPost, "/v1/enrollments", studentToken,
		marshallObj(t, enroll.NewEnrollment{CourseID: paid.ID}))
	app.do(req, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var enr enroll.Enrollment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enr))
	assert.Equal(t, enroll.StatusPending, enr.Status)
	assert.NotEmpty(t, enr.OrderID)

	// video still gated
	req, rec = newAuthRequest(http.MethodGet, videoPath, studentToken)
	app.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// a forged signature is rejected
	req, rec = newRequest(http.MethodPost, "/v1/enrollments/confirm",
		marshallObj(t, enroll.ConfirmPayment{OrderID: enr.OrderID, ProviderPaymentID: "pay_1", Signature: "forged"}))
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the real signature verifies the enrollment
	sig := app.gateway.Sign(enr.OrderID, "pay_1")
	req, rec = newRequest(http.MethodPost, "/v1/enrollments/confirm",
		marshallObj(t, enroll.ConfirmPayment{OrderID: enr.OrderID, ProviderPaymentID: "pay_1", Signature: sig}))
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enr))
	assert.Equal(t, enroll.StatusVerified, enr.Status)

	// paid content unlocked
	req, rec = newAuthRequest(http.MethodGet, videoPath, studentToken)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_enrollApi_freeCourse(t *testing.T) {
	app := setup(t)
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})
	studentToken := getToken(t, student)

	free := seedCourse(t, app, "Free Course", 0, true)

	req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", studentToken,
		marshallObj(t, enroll.NewEnrollment{CourseID: free.ID}))
	app.do(req, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var enr enroll.Enrollment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enr))
	assert.Equal(t, enroll.StatusVerified, enr.Status)

	// enrolling twice conflicts
	req, rec = newAuthRequest(http.MethodPost, "/v1/enrollments", studentToken,
		marshallObj(t, enroll.NewEnrollment{CourseID: free.ID}))
	app.do(req, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func Test_enrollApi_adminListing(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})

	free := seedCourse(t, app, "Free Course", 0, true)
	req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", getToken(t, student),
		marshallObj(t, enroll.NewEnrollment{CourseID: free.ID}))
	app.do(req, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// students cannot list enrollments
	req, rec = newAuthRequest(http.MethodGet, "/v1/enrollments", getToken(t, student))
	app.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/enrollments", getToken(t, admin))
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	var enrollments []enroll.Enrollment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrollments))
	assert.Len(t, enrollments, 1)
}
