package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc   course.Service
	files core.FileStore
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, files core.FileStore) {
	api := courseApi{svc: svc, files: files}

	cg := g.Group("/courses")

	// viewing endpoints; anonymous browsing is allowed, paid content is
	// gated per viewer
	cg.GET("", api.query, optionalAuth())
	cg.GET("/:id", api.retrieve, optionalAuth())
	cg.GET("/:id/videos/:videoID", api.retrieveVideo, optionalAuth())

	// admin endpoints
	ag := cg.Group("/admin", jwt, adminMiddleware())
	ag.POST("", api.create)
	ag.GET("", api.queryAdmin)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/videos", api.addVideo)
	ag.POST("/:id/videos/upload", api.uploadVideo)
	ag.POST("/:id/repair", api.repair)
	ag.POST("/repair", api.repairAll)
}

// AddVideoRequest carries the video payload and its target slot. The
// indices accept numbers or numeric strings and may be omitted.
type AddVideoRequest struct {
	course.NewVideo
	CategoryIndex    course.Index `json:"category_index"`
	SubcategoryIndex course.Index `json:"subcategory_index"`
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	courses, err := api.svc.QueryAll(rctx)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	viewer := contextViewer(ctx)
	if viewer.IsAdmin {
		return ctx.JSON(http.StatusOK, courses)
	}
	published := make([]course.Course, 0, len(courses))
	for _, crs := range courses {
		if !crs.IsPublished {
			continue
		}
		if crs, err = api.svc.ForViewer(rctx, crs, viewer); err != nil {
			return err
		}
		published = append(published, crs)
	}
	return ctx.JSON(http.StatusOK, published)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	crs, err := api.svc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	viewer := contextViewer(ctx)
	if !crs.IsPublished && !viewer.IsAdmin {
		return errHttpNotFound
	}
	if crs, err = api.svc.ForViewer(rctx, crs, viewer); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) retrieveVideo(ctx echo.Context) error {
	vid, err := api.svc.GetVideoForViewing(
		ctx.Request().Context(),
		ctx.Param("id"),
		ctx.Param("videoID"),
		contextViewer(ctx),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, vid)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryAdmin(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	id := ctx.Param("id")
	rctx := ctx.Request().Context()

	crs, err := api.svc.GetByID(rctx, id)
	if err != nil {
		return err
	}
	if err := data.Validate(crs); err != nil {
		return err
	}

	crs, err = api.svc.Update(rctx, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addVideo(ctx echo.Context) error {
	var data AddVideoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddVideoRequest")
	}
	if err := data.NewVideo.Validate(); err != nil {
		return err
	}

	crs, vid, err := api.svc.AddVideo(
		ctx.Request().Context(),
		ctx.Param("id"),
		data.CategoryIndex,
		data.SubcategoryIndex,
		data.NewVideo,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"course": crs, "video": vid})
}

func (api *courseApi) repair(ctx echo.Context) error {
	report, err := api.svc.RepairCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *courseApi) repairAll(ctx echo.Context) error {
	results, err := api.svc.RepairAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "repairing courses")
	}
	return ctx.JSON(http.StatusOK, results)
}

// uploadVideo stores the file then adds the video to the course in one
// request; the title, duration and slot indices ride along as form fields.
// Form rejections come before the file is stored.
func (api *courseApi) uploadVideo(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	title := core.CleanString(ctx.FormValue("title"))
	if title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	duration := 0
	if d := ctx.FormValue("duration_seconds"); d != "" {
		if duration, err = strconv.Atoi(d); err != nil || duration < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid duration_seconds")
		}
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = f.Close() }()

	url, err := api.files.Save(ctx.Request().Context(), fh.Filename, f)
	if err != nil {
		return errors.Wrap(err, "saving upload")
	}

	crs, vid, err := api.svc.AddVideo(
		ctx.Request().Context(),
		ctx.Param("id"),
		course.ParseIndex(ctx.FormValue("category_index")),
		course.ParseIndex(ctx.FormValue("subcategory_index")),
		course.NewVideo{Title: title, SourceURL: url, DurationSeconds: duration},
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"course": crs, "video": vid})
}
