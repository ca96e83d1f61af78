package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/darasa/api/echo"
	"github.com/trezcool/darasa/core/user"
)

func Test_userApi_registerAndLogin(t *testing.T) {
	app := setup(t)

	// registration
	req, rec := newRequest(http.MethodPost, "/v1/users/register",
		marshallObj(t, user.NewUser{
			Name:            "Asha M",
			Username:        "ashamw",
			Email:           "asha@test.cd",
			Password:        "V3ryStr0ngPwd!",
			PasswordConfirm: "V3ryStr0ngPwd!",
		}))
	app.do(req, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var usr user.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
	assert.Equal(t, []string{user.RoleStudent}, usr.Roles)
	assert.NotContains(t, rec.Body.String(), "password")

	// duplicate email is rejected
	req, rec = newRequest(http.MethodPost, "/v1/users/register",
		marshallObj(t, user.NewUser{
			Name:            "Other",
			Username:        "otheruser",
			Email:           "asha@test.cd",
			Password:        "V3ryStr0ngPwd!",
			PasswordConfirm: "V3ryStr0ngPwd!",
		}))
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// login with username
	req, rec = newRequest(http.MethodPost, "/v1/users/login",
		marshallObj(t, echoapi.LoginRequest{Username: "ashamw", Password: "V3ryStr0ngPwd!"}))
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	var login echoapi.LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)

	// bad password
	req, rec = newRequest(http.MethodPost, "/v1/users/login",
		marshallObj(t, echoapi.LoginRequest{Username: "ashamw", Password: "wrong"}))
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the token works
	req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", login.Token)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_userApi_adminOnlyListing(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})

	req, rec := newRequest(http.MethodGet, "/v1/users")
	app.do(req, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/users", getToken(t, student))
	app.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/users", getToken(t, admin))
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []user.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}
