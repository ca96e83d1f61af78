package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound         = errors.New("course not found")
	ErrVideoNotFound    = errors.New("video not found")
	ErrMalformedContent = errors.New("malformed course content")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		GetCourseBySlug(ctx context.Context, slug string) (Course, error)
		// UpdateCourse persists the whole document; last write wins.
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error
	}

	// Cache is a read-through document cache; it must be invalidated on
	// every persisted write.
	Cache interface {
		GetCourse(ctx context.Context, id string) (Course, bool)
		SetCourse(ctx context.Context, crs Course)
		DeleteCourse(ctx context.Context, id string)
	}

	// AccessChecker answers whether an identity holds a verified grant for
	// a course; the enrollment service implements it.
	AccessChecker interface {
		HasVerifiedAccess(ctx context.Context, userID, courseID string) (bool, error)
	}

	// BatchRepairResult reports one course's outcome within a batch repair;
	// a failure on one course never aborts the others.
	BatchRepairResult struct {
		CourseID string  `json:"course_id"`
		Report   *Report `json:"report,omitempty"`
		Error    string  `json:"error,omitempty"`
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		GetBySlug(ctx context.Context, slug string) (Course, error)
		ForViewer(ctx context.Context, crs Course, v Viewer) (Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		ReplaceContent(ctx context.Context, id string, content []*Category) (Course, error)
		Delete(ctx context.Context, ids ...string) error
		AddVideo(ctx context.Context, courseID string, catIdx, subIdx Index, nv NewVideo) (Course, Video, error)
		GetVideoForViewing(ctx context.Context, courseID, videoID string, v Viewer) (Video, error)
		RepairCourse(ctx context.Context, id string) (Report, error)
		RepairAll(ctx context.Context) ([]BatchRepairResult, error)
	}

	service struct {
		repo   Repository
		cache  Cache
		access AccessChecker
		log    core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, cache Cache, access AccessChecker, log core.Logger) Service {
	return &service{repo: repo, cache: cache, access: access, log: log}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		ID:          uuid.New().String(),
		Title:       nc.Title,
		Description: nc.Description,
		Instructor:  nc.Instructor,
		Price:       nc.Price,
		IsPublished: nc.IsPublished,
		Content:     []*Category{},
		Videos:      []Video{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	crs.Slug = svc.uniqueSlug(ctx, crs)
	return svc.repo.CreateCourse(ctx, crs)
}

// uniqueSlug derives a slug from the title, de-duplicating with a short ID
// suffix when taken.
func (svc *service) uniqueSlug(ctx context.Context, crs Course) string {
	slug := core.Slugify(crs.Title)
	if existing, err := svc.repo.GetCourseBySlug(ctx, slug); err == nil && existing.ID != crs.ID {
		if len(crs.ID) >= 8 {
			slug += "-" + crs.ID[:8]
		}
	}
	return slug
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	// serve normalized trees; persisted state is only touched by RepairCourse
	for i := range courses {
		courses[i], _ = Repair(courses[i])
	}
	return courses, nil
}

// load fetches a course through the cache; mutation paths use loadFresh.
func (svc *service) load(ctx context.Context, id string) (Course, error) {
	if crs, ok := svc.cache.GetCourse(ctx, id); ok {
		return crs, nil
	}
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	svc.cache.SetCourse(ctx, crs)
	return crs, nil
}

// loadFresh bypasses the cache: locations resolve against the freshest
// read we have.
func (svc *service) loadFresh(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	crs, err := svc.load(ctx, id)
	if err != nil {
		return Course{}, err
	}
	crs, _ = Repair(crs)
	return crs, nil
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Course, error) {
	crs, err := svc.repo.GetCourseBySlug(ctx, core.CleanString(slug, true /* lower */))
	if err != nil {
		return Course{}, err
	}
	crs, _ = Repair(crs)
	return crs, nil
}

// Update applies metadata changes, and a content replacement when one is
// supplied, in a single validate-then-commit write. A rejected payload
// leaves the document unchanged, metadata included.
func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.loadFresh(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Content != nil {
		if err := validateReplacement(crs, *uc.Content); err != nil {
			return Course{}, err
		}
	}
	crs.Title = uc.Title
	crs.Description = uc.Description
	crs.Instructor = uc.Instructor
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.IsPublished != nil {
		crs.IsPublished = *uc.IsPublished
	}
	if uc.Content != nil {
		crs.Content = *uc.Content
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.save(ctx, crs)
}

// validateReplacement rejects a malformed replacement tree before any
// persistence write. A non-empty tree is also refused while the legacy
// flat list still holds videos; a full replacement may not put the
// document into the dual-surface state.
func validateReplacement(crs Course, content []*Category) error {
	if !WellFormedContent(content) {
		return ErrMalformedContent
	}
	for _, cat := range content {
		if core.CleanString(cat.CategoryName) == "" {
			return ErrMalformedContent
		}
	}
	if len(content) > 0 && len(crs.Videos) > 0 {
		return ErrMalformedContent
	}
	return nil
}

// ReplaceContent swaps in a full content tree (admin bulk edit). The
// replacement is validated before any persistence write; a rejected tree
// leaves the document unchanged.
func (svc *service) ReplaceContent(ctx context.Context, id string, content []*Category) (Course, error) {
	crs, err := svc.loadFresh(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err := validateReplacement(crs, content); err != nil {
		return Course{}, err
	}
	crs.Content = content
	crs.UpdatedAt = time.Now().UTC()
	return svc.save(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if err := svc.repo.DeleteCoursesByID(ctx, ids...); err != nil {
		return err
	}
	for _, id := range ids {
		svc.cache.DeleteCourse(ctx, id)
	}
	return nil
}

// AddVideo appends a video to the list addressed by (catIdx, subIdx),
// resolved against the current persisted tree. A rejected location leaves
// the persisted course untouched.
func (svc *service) AddVideo(ctx context.Context, courseID string, catIdx, subIdx Index, nv NewVideo) (Course, Video, error) {
	crs, err := svc.loadFresh(ctx, courseID)
	if err != nil {
		return Course{}, Video{}, err
	}

	crs = crs.clone()
	target, err := Resolve(&crs, catIdx, subIdx)
	if err != nil {
		return Course{}, Video{}, err
	}

	vid := Video{
		ID:              uuid.New().String(),
		Title:           nv.Title,
		SourceURL:       nv.SourceURL,
		DurationSeconds: nv.DurationSeconds,
		Order:           len(*target),
	}
	*target = append(*target, vid)
	crs.UpdatedAt = time.Now().UTC()

	crs, err = svc.save(ctx, crs)
	if err != nil {
		return Course{}, Video{}, err
	}
	return crs, vid, nil
}

// viewerVerified answers whether the viewer holds a verified grant for
// the course; the gate only needs it for authenticated non-admins on
// paid courses.
func (svc *service) viewerVerified(ctx context.Context, crs Course, v Viewer) (bool, error) {
	if !v.Authenticated || v.IsAdmin || crs.IsFree() {
		return false, nil
	}
	verified, err := svc.access.HasVerifiedAccess(ctx, v.UserID, crs.ID)
	if err != nil {
		return false, pkgerrors.Wrap(err, "checking course access")
	}
	return verified, nil
}

// ForViewer returns the course as the viewer may see it. Metadata stays
// visible either way; playable references are stripped when the access
// gate denies the viewer.
func (svc *service) ForViewer(ctx context.Context, crs Course, v Viewer) (Course, error) {
	verified, err := svc.viewerVerified(ctx, crs, v)
	if err != nil {
		return Course{}, err
	}
	if Authorize(v, crs, verified) != nil {
		return crs.Redacted(), nil
	}
	return crs, nil
}

// GetVideoForViewing returns the playable reference for a video, applying
// the repaired view and the access gate.
func (svc *service) GetVideoForViewing(ctx context.Context, courseID, videoID string, v Viewer) (Video, error) {
	crs, err := svc.load(ctx, courseID)
	if err != nil {
		return Video{}, err
	}
	crs, _ = Repair(crs)

	verified, err := svc.viewerVerified(ctx, crs, v)
	if err != nil {
		return Video{}, err
	}
	if err := Authorize(v, crs, verified); err != nil {
		return Video{}, err
	}

	vid, _, ok := findVideo(&crs, videoID)
	if !ok {
		return Video{}, ErrVideoNotFound
	}
	return vid, nil
}

// RepairCourse runs the normalization pass against the stored document and
// persists the result only when something changed. Slug backfill rides
// along with the persisted pass.
func (svc *service) RepairCourse(ctx context.Context, id string) (Report, error) {
	crs, err := svc.loadFresh(ctx, id)
	if err != nil {
		return Report{}, err
	}

	repaired, rep := Repair(crs)
	if repaired.Slug == "" {
		repaired.Slug = svc.uniqueSlug(ctx, repaired)
		rep.Changed = true
	}
	if !rep.Changed {
		return rep, nil
	}

	repaired.UpdatedAt = time.Now().UTC()
	if _, err := svc.save(ctx, repaired); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// RepairAll repairs every course, isolating failures per course.
func (svc *service) RepairAll(ctx context.Context) ([]BatchRepairResult, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]BatchRepairResult, 0, len(courses))
	for _, crs := range courses {
		rep, err := svc.RepairCourse(ctx, crs.ID)
		if err != nil {
			svc.log.Error("repairing course failed", pkgerrors.Wrap(err, crs.ID))
			results = append(results, BatchRepairResult{CourseID: crs.ID, Error: err.Error()})
			continue
		}
		results = append(results, BatchRepairResult{CourseID: crs.ID, Report: &rep})
	}
	return results, nil
}

func (svc *service) save(ctx context.Context, crs Course) (Course, error) {
	crs, err := svc.repo.UpdateCourse(ctx, crs)
	if err != nil {
		return Course{}, err
	}
	svc.cache.DeleteCourse(ctx, crs.ID)
	return crs, nil
}
