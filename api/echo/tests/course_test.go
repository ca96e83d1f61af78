package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

func seedCourse(t *testing.T, app *testApp, title string, price int, published bool) course.Course {
	t.Helper()
	crs, err := app.crsSvc.Create(context.Background(), course.NewCourse{
		Title:       title,
		Price:       price,
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("seedCourse() failed: %v", err)
	}
	return crs
}

func seedVideo(t *testing.T, app *testApp, courseID string) course.Video {
	t.Helper()
	_, vid, err := app.crsSvc.AddVideo(context.Background(), courseID, course.Index{}, course.Index{}, course.NewVideo{
		Title:     "Lesson 1",
		SourceURL: "https://media.local/lesson1.mp4",
	})
	if err != nil {
		t.Fatalf("seedVideo() failed: %v", err)
	}
	return vid
}

func Test_courseApi_adminCRUD(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	// students cannot create courses
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/admin", studentToken,
		marshallObj(t, course.NewCourse{Title: "Nope"}))
	app.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin creates a course
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses/admin", adminToken,
		marshallObj(t, course.NewCourse{Title: "Go for Beginners", Price: 0, IsPublished: true}))
	app.do(req, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var crs course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crs))
	assert.NotEmpty(t, crs.ID)
	assert.Equal(t, "go-for-beginners", crs.Slug)

	// replace content with a hierarchy
	body := []byte(`{"content": [
		{"categoryName": "Basics", "subcategories": [{"subcategoryName": "Setup", "videos": []}], "videos": []}
	]}`)
	req, rec = newAuthRequest(http.MethodPut, "/v1/courses/admin/"+crs.ID, adminToken, body)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	// malformed content is rejected whole
	req, rec = newAuthRequest(http.MethodPut, "/v1/courses/admin/"+crs.ID, adminToken,
		[]byte(`{"content": [null]}`))
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_courseApi_addVideo(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	adminToken := getToken(t, admin)

	crs := seedCourse(t, app, "Structured", 0, true)
	_, err := app.crsSvc.ReplaceContent(context.Background(), crs.ID, []*course.Category{
		{
			CategoryName:  "Basics",
			Subcategories: []*course.Subcategory{{SubcategoryName: "Setup", Videos: []course.Video{}}},
			Videos:        []course.Video{},
		},
	})
	assert.NoError(t, err)

	videoBody := func(cat, sub string) []byte {
		payload := fmt.Sprintf(`{"title": "Vid", "source_url": "https://media.local/v.mp4"%s%s}`, cat, sub)
		return []byte(payload)
	}

	tests := []struct {
		name     string
		body     []byte
		wantCode int
	}{
		{"no indices appends to legacy list", videoBody("", ""), http.StatusCreated},
		{"category index", videoBody(`, "category_index": 0`, ""), http.StatusCreated},
		{"string indices are accepted", videoBody(`, "category_index": "0"`, `, "subcategory_index": "0"`), http.StatusCreated},
		{"category out of range", videoBody(`, "category_index": 5`, ""), http.StatusBadRequest},
		{"subcategory without category", videoBody("", `, "subcategory_index": 0`), http.StatusBadRequest},
		{"unparsable index", videoBody(`, "category_index": "abc"`, ""), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/courses/admin/"+crs.ID+"/videos", adminToken, tt.body)
			app.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	// failed inserts left the course untouched
	got, err := app.crsSvc.GetByID(context.Background(), crs.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Videos, 1)
	assert.Len(t, got.Content[0].Videos, 1)
	assert.Len(t, got.Content[0].Subcategories[0].Videos, 1)
}

func Test_courseApi_videoAccess(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	free := seedCourse(t, app, "Free Course", 0, true)
	freeVid := seedVideo(t, app, free.ID)

	paid := seedCourse(t, app, "Paid Course", 4999, true)
	paidVid := seedVideo(t, app, paid.ID)

	draft := seedCourse(t, app, "Draft Course", 0, false)
	draftVid := seedVideo(t, app, draft.ID)

	videoPath := func(crs course.Course, vid course.Video) string {
		return "/v1/courses/" + crs.ID + "/videos/" + vid.ID
	}

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"anonymous views free video", videoPath(free, freeVid), "", http.StatusOK},
		{"anonymous is asked to authenticate on paid", videoPath(paid, paidVid), "", http.StatusUnauthorized},
		{"unverified student is asked to pay", videoPath(paid, paidVid), studentToken, http.StatusForbidden},
		{"unpublished course is unavailable", videoPath(draft, draftVid), studentToken, http.StatusForbidden},
		{"admin views anything", videoPath(draft, draftVid), adminToken, http.StatusOK},
		{"unknown video", "/v1/courses/" + free.ID + "/videos/nope", "", http.StatusNotFound},
		{"unknown course", "/v1/courses/nope/videos/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.do(req, rec)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func Test_courseApi_repair(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	adminToken := getToken(t, admin)

	crs := seedCourse(t, app, "Legacy", 0, true)
	seedVideo(t, app, crs.ID)

	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/admin/"+crs.ID+"/repair", adminToken)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report course.Report
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.DefaultCategoryAdded)

	got, err := app.crsSvc.GetByID(context.Background(), crs.ID)
	assert.NoError(t, err)
	if assert.Len(t, got.Content, 1) {
		assert.Equal(t, course.DefaultCategoryName, got.Content[0].CategoryName)
	}
	assert.Len(t, got.Videos, 1)

	// batch repair runs and reports per course
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses/admin/repair", adminToken)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	var results []course.BatchRepairResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 1)
}

func Test_courseApi_listing(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	adminToken := getToken(t, admin)

	seedCourse(t, app, "Published", 0, true)
	seedCourse(t, app, "Draft", 0, false)

	// anonymous only sees published courses
	req, rec := newRequest(http.MethodGet, "/v1/courses")
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	// admin sees everything
	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/admin", adminToken)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}

func Test_courseApi_uploadVideo(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	adminToken := getToken(t, admin)

	crs := seedCourse(t, app, "Uploads", 0, true)

	uploadReq := func(fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
		body := new(bytes.Buffer)
		mw := multipart.NewWriter(body)
		w, err := mw.CreateFormFile("file", "lesson-01.mp4")
		assert.NoError(t, err)
		_, err = w.Write([]byte("not really a video"))
		assert.NoError(t, err)
		for k, v := range fields {
			assert.NoError(t, mw.WriteField(k, v))
		}
		assert.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/courses/admin/"+crs.ID+"/videos/upload", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		return req, httptest.NewRecorder()
	}

	// stored file lands as a video on the course
	req, rec := uploadReq(map[string]string{"title": "Lesson 1"})
	app.do(req, rec)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"lesson-01.mp4"}, app.files.saved)

	got, err := app.crsSvc.GetByID(context.Background(), crs.ID)
	assert.NoError(t, err)
	if assert.Len(t, got.Videos, 1) {
		assert.Equal(t, "Lesson 1", got.Videos[0].Title)
		assert.Equal(t, "http://localhost:8000/media/lesson-01.mp4", got.Videos[0].SourceURL)
	}

	// a bad slot index stores nothing on the course
	req, rec = uploadReq(map[string]string{"title": "Lesson 2", "category_index": "9"})
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// title is required before the file is stored
	req, rec = uploadReq(nil)
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, app.files.saved, 2) // the title rejection never hit the store

	// missing file part
	req2, rec2 := newAuthRequest(http.MethodPost, "/v1/courses/admin/"+crs.ID+"/videos/upload", adminToken)
	app.do(req2, rec2)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func Test_courseApi_sourceURLRedaction(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	student := createUser(t, app, "Student", "student1", "student@test.cd", []string{user.RoleStudent})
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	paid := seedCourse(t, app, "Paid Course", 4999, true)
	seedVideo(t, app, paid.ID)
	free := seedCourse(t, app, "Free Course", 0, true)
	seedVideo(t, app, free.ID)

	// ungated viewers get metadata without playable references
	for name, token := range map[string]string{"anonymous": "", "unverified student": studentToken} {
		t.Run(name+" retrieve", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+paid.ID, token)
			app.do(req, rec)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Lesson 1")
			assert.NotContains(t, rec.Body.String(), "source_url")
		})
	}

	// the listing strips paid references but keeps free ones
	req, rec := newRequest(http.MethodGet, "/v1/courses")
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []course.Course
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	for _, crs := range listed {
		for _, vid := range crs.Videos {
			if crs.ID == paid.ID {
				assert.Empty(t, vid.SourceURL)
			} else {
				assert.NotEmpty(t, vid.SourceURL)
			}
		}
	}

	// admins see everything
	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+paid.ID, adminToken)
	app.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://media.local/lesson1.mp4")
}

func Test_courseApi_updateRejectionIsAtomic(t *testing.T) {
	app := setup(t)
	admin := createUser(t, app, "Admin", "admin1", "admin@test.cd", []string{user.RoleAdmin})
	adminToken := getToken(t, admin)

	crs := seedCourse(t, app, "Original Title", 0, true)

	req, rec := newAuthRequest(http.MethodPut, "/v1/courses/admin/"+crs.ID, adminToken,
		[]byte(`{"title": "Sneaky New Title", "content": [null]}`))
	app.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := app.crsSvc.GetByID(context.Background(), crs.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Original Title", stored.Title)
	assert.Empty(t, stored.Content)
}
