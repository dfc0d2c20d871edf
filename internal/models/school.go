package models

import "time"

// School is an invited school with portal access
type School struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	ContactName    string     `json:"contactName"`
	ContactEmail   string     `json:"contactEmail"`
	InvitationCode string     `json:"invitationCode,omitempty"`
	InvitedAt      *time.Time `json:"invitedAt,omitempty"`
	JoinedAt       *time.Time `json:"joinedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// PaymentStatus tracks a school payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Payment is a registration fee paid by a school
type Payment struct {
	ID          int64         `json:"id"`
	SchoolID    int64         `json:"schoolId"`
	AmountCents int           `json:"amountCents"`
	Currency    string        `json:"currency"`
	Reference   string        `json:"reference"`
	Status      PaymentStatus `json:"status"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}
