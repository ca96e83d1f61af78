package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/enroll"
)

type enrollmentRow struct {
	ID              string      `db:"id"`
	UserID          string      `db:"user_id"`
	CourseID        string      `db:"course_id"`
	Status          string      `db:"status"`
	OrderID         null.String `db:"order_id"`
	ProviderOrderID null.String `db:"provider_order_id"`
	Amount          int         `db:"amount"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enroll.Repository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) row(enr enroll.Enrollment) enrollmentRow {
	return enrollmentRow{
		ID:              enr.ID,
		UserID:          enr.UserID,
		CourseID:        enr.CourseID,
		Status:          enr.Status,
		OrderID:         null.NewString(enr.OrderID, enr.OrderID != ""),
		ProviderOrderID: null.NewString(enr.ProviderOrderID, enr.ProviderOrderID != ""),
		Amount:          enr.Amount,
		CreatedAt:       enr.CreatedAt.UTC(),
		UpdatedAt:       enr.UpdatedAt.UTC(),
	}
}

func (repo enrollmentRepository) unrow(row enrollmentRow) enroll.Enrollment {
	return enroll.Enrollment{
		ID:              row.ID,
		UserID:          row.UserID,
		CourseID:        row.CourseID,
		Status:          row.Status,
		OrderID:         row.OrderID.String,
		ProviderOrderID: row.ProviderOrderID.String,
		Amount:          row.Amount,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to enroll.ErrNotFound
func (repo enrollmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return enroll.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollment (id, user_id, course_id, status, order_id, provider_order_id, amount, created_at, updated_at)
		VALUES (:id, :user_id, :course_id, :status, :order_id, :provider_order_id, :amount, :created_at, :updated_at)`,
		repo.row(enr),
	)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID string) (enroll.Enrollment, error) {
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return enroll.Enrollment{}, repo.trapNoRowsErr(err, "getting enrollment")
	}
	return repo.unrow(row), nil
}

func (repo enrollmentRepository) GetEnrollmentByOrderID(ctx context.Context, orderID string) (enroll.Enrollment, error) {
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM enrollment WHERE order_id = $1`, orderID)
	if err != nil {
		return enroll.Enrollment{}, repo.trapNoRowsErr(err, "getting enrollment by order id")
	}
	return repo.unrow(row), nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE enrollment
		SET status = :status, order_id = :order_id, provider_order_id = :provider_order_id,
			amount = :amount, updated_at = :updated_at
		WHERE id = :id`,
		repo.row(enr),
	)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return enr, nil
}

func (repo enrollmentRepository) QueryAllEnrollments(ctx context.Context) ([]enroll.Enrollment, error) {
	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM enrollment ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]enroll.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, repo.unrow(row))
	}
	return enrollments, nil
}
