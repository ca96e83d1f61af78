package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/course"
)

// courseRow is the course table shape. The content tree and the flat
// videos list are stored as JSONB documents and written whole, so the
// last write wins.
type courseRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Slug        null.String    `db:"slug"`
	Description null.String    `db:"description"`
	Instructor  null.String    `db:"instructor"`
	Price       int            `db:"price"`
	IsPublished bool           `db:"is_published"`
	Content     types.JSONText `db:"content"`
	Videos      types.JSONText `db:"videos"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo courseRepository) row(crs course.Course) (courseRow, error) {
	content, err := json.Marshal(crs.Content)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "marshalling course content")
	}
	videos, err := json.Marshal(crs.Videos)
	if err != nil {
		return courseRow{}, errors.Wrap(err, "marshalling course videos")
	}
	return courseRow{
		ID:          crs.ID,
		Title:       crs.Title,
		Slug:        null.NewString(crs.Slug, crs.Slug != ""),
		Description: null.NewString(crs.Description, crs.Description != ""),
		Instructor:  null.NewString(crs.Instructor, crs.Instructor != ""),
		Price:       crs.Price,
		IsPublished: crs.IsPublished,
		Content:     content,
		Videos:      videos,
		CreatedAt:   crs.CreatedAt.UTC(),
		UpdatedAt:   crs.UpdatedAt.UTC(),
	}, nil
}

func (repo courseRepository) unrow(row courseRow) (course.Course, error) {
	crs := course.Course{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug.String,
		Description: row.Description.String,
		Instructor:  row.Instructor.String,
		Price:       row.Price,
		IsPublished: row.IsPublished,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Content) > 0 {
		if err := json.Unmarshal(row.Content, &crs.Content); err != nil {
			return course.Course{}, errors.Wrap(err, "unmarshalling course content")
		}
	}
	if len(row.Videos) > 0 {
		if err := json.Unmarshal(row.Videos, &crs.Videos); err != nil {
			return course.Course{}, errors.Wrap(err, "unmarshalling course videos")
		}
	}
	return crs, nil
}

// trapNoRowsErr maps psql "no rows" err to course.ErrNotFound
func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row, err := repo.row(crs)
	if err != nil {
		return course.Course{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, title, slug, description, instructor, price, is_published, content, videos, created_at, updated_at)
		VALUES (:id, :title, :slug, :description, :instructor, :price, :is_published, :content, :videos, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM course ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		crs, err := repo.unrow(row)
		if err != nil {
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "getting course by id")
	}
	return repo.unrow(row)
}

func (repo courseRepository) GetCourseBySlug(ctx context.Context, slug string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE slug = $1`, slug); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "getting course by slug")
	}
	return repo.unrow(row)
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row, err := repo.row(crs)
	if err != nil {
		return course.Course{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE course
		SET title = :title, slug = :slug, description = :description, instructor = :instructor,
			price = :price, is_published = :is_published, content = :content, videos = :videos,
			updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}
