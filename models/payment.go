package models

import "time"

// CheckoutRequest asks the payment gateway to open a hosted checkout.
type CheckoutRequest struct {
	BookingID     string
	TravelerID    string
	CustomerEmail string
	Description   string
	Amount        Money
	Currency      string
	ExpiresAt     time.Time
}

// CheckoutSession is the gateway's answer to a CheckoutRequest.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEventType is the normalized kind of a gateway webhook event.
type PaymentEventType string

const (
	PaymentCompleted      PaymentEventType = "checkout.completed"
	PaymentSessionExpired PaymentEventType = "checkout.expired"
	PaymentFailed         PaymentEventType = "payment.failed"
	PaymentIgnored        PaymentEventType = "ignored"
)

// PaymentEvent is a verified webhook event reduced to what the booking core consumes.
type PaymentEvent struct {
	ID        string
	Type      PaymentEventType
	RawType   string
	BookingID string // correlation token from checkout metadata
}
