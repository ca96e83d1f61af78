package enroll

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("enrollment not found")
	ErrAlreadyEnrolled  = errors.New("already enrolled in this course")
	ErrInvalidSignature = errors.New("payment signature verification failed")
)

type (
	// Gateway is the payment provider contract: order creation and
	// signature verification are consumed as black boxes.
	Gateway interface {
		CreateOrder(ctx context.Context, orderID string, amount int) (providerOrderID string, err error)
		VerifySignature(orderID, providerPaymentID, signature string) error
	}

	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
		GetEnrollmentByOrderID(ctx context.Context, orderID string) (Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		QueryAllEnrollments(ctx context.Context) ([]Enrollment, error)
	}

	Service interface {
		course.AccessChecker

		Enroll(ctx context.Context, usr user.User, courseID string) (Enrollment, error)
		ConfirmPayment(ctx context.Context, cp ConfirmPayment) (Enrollment, error)
		QueryAll(ctx context.Context) ([]Enrollment, error)
	}

	service struct {
		repo    Repository
		courses course.Repository
		users   user.Repository
		gateway Gateway
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courses course.Repository, users user.Repository, gateway Gateway, mailSvc core.EmailService) Service {
	return &service{repo: repo, courses: courses, users: users, gateway: gateway, mailSvc: mailSvc}
}

// Enroll registers a user's intent to take a course. Free courses grant a
// verified enrollment immediately; paid ones create a gateway order and
// stay pending until ConfirmPayment.
func (svc *service) Enroll(ctx context.Context, usr user.User, courseID string) (Enrollment, error) {
	crs, err := svc.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}

	if existing, err := svc.repo.GetEnrollment(ctx, usr.ID, courseID); err == nil {
		if existing.IsVerified() {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return existing, nil // pending: hand the open order back
	} else if err != ErrNotFound {
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	enr := Enrollment{
		ID:        uuid.New().String(),
		UserID:    usr.ID,
		CourseID:  courseID,
		Amount:    crs.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if crs.IsFree() {
		enr.Status = StatusVerified
		return svc.repo.CreateEnrollment(ctx, enr)
	}

	enr.Status = StatusPending
	enr.OrderID = uuid.New().String()
	providerOrderID, err := svc.gateway.CreateOrder(ctx, enr.OrderID, enr.Amount)
	if err != nil {
		return Enrollment{}, pkgerrors.Wrap(err, "creating payment order")
	}
	enr.ProviderOrderID = providerOrderID
	return svc.repo.CreateEnrollment(ctx, enr)
}

// ConfirmPayment verifies the gateway signature and flips the enrollment
// to verified, notifying the student by email.
func (svc *service) ConfirmPayment(ctx context.Context, cp ConfirmPayment) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollmentByOrderID(ctx, cp.OrderID)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.IsVerified() {
		return enr, nil // confirmation retries are harmless
	}

	if err := svc.gateway.VerifySignature(cp.OrderID, cp.ProviderPaymentID, cp.Signature); err != nil {
		return Enrollment{}, ErrInvalidSignature
	}

	enr.Status = StatusVerified
	enr.UpdatedAt = time.Now().UTC()
	enr, err = svc.repo.UpdateEnrollment(ctx, enr)
	if err != nil {
		return Enrollment{}, err
	}

	svc.sendVerifiedEmail(ctx, enr)
	return enr, nil
}

func (svc *service) HasVerifiedAccess(ctx context.Context, userID, courseID string) (bool, error) {
	enr, err := svc.repo.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return enr.IsVerified(), nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryAllEnrollments(ctx)
}

func (svc *service) sendVerifiedEmail(ctx context.Context, enr Enrollment) {
	usr, err := svc.users.GetUserByID(ctx, enr.UserID)
	if err != nil {
		return // enrollment already persisted; notification is best-effort
	}
	var courseTitle string
	if crs, err := svc.courses.GetCourseByID(ctx, enr.CourseID); err == nil {
		courseTitle = crs.Title
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your enrollment is confirmed",
		TemplateName: "enrollment-verified",
		TemplateData: struct {
			Name        string
			CourseTitle string
		}{usr.Name, courseTitle},
	})
}
