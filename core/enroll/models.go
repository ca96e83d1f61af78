package enroll

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Enrollment statuses. Only a verified enrollment grants access to paid
// content; pending ones await payment confirmation.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

type Enrollment struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CourseID        string    `json:"course_id"`
	Status          string    `json:"status"`
	OrderID         string    `json:"order_id,omitempty"`
	ProviderOrderID string    `json:"provider_order_id,omitempty"`
	Amount          int       `json:"amount"` // minor units
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (e Enrollment) IsVerified() bool { return e.Status == StatusVerified }

// NewEnrollment contains information needed to enroll into a course.
type NewEnrollment struct {
	CourseID string `json:"course_id" validate:"required"`
}

func (ne *NewEnrollment) Validate() error {
	ne.CourseID = core.CleanString(ne.CourseID)
	return core.Validate.Struct(ne)
}

// ConfirmPayment carries the gateway's payment outcome back to us; the
// signature proves it was not forged.
type ConfirmPayment struct {
	OrderID           string `json:"order_id" validate:"required"`
	ProviderPaymentID string `json:"provider_payment_id" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

func (cp *ConfirmPayment) Validate() error {
	cp.OrderID = core.CleanString(cp.OrderID)
	cp.ProviderPaymentID = core.CleanString(cp.ProviderPaymentID)
	cp.Signature = core.CleanString(cp.Signature)
	return core.Validate.Struct(cp)
}
