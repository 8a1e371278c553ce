package models

import "time"

// BookingStatus is a state of the booking lifecycle.
type BookingStatus string

const (
	StatusCreated        BookingStatus = "created"
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCompleted      BookingStatus = "completed"
	StatusCancelled      BookingStatus = "cancelled"

	// Expired and PaymentFailed are never stored: reaching them deletes the row.
	StatusExpired       BookingStatus = "expired"
	StatusPaymentFailed BookingStatus = "payment_failed"
)

// UnpaidStatuses are the states a booking holds while checkout is open.
var UnpaidStatuses = []BookingStatus{StatusCreated, StatusPendingPayment}

// InactiveStatuses are excluded from overlap detection.
var InactiveStatuses = []BookingStatus{StatusCancelled}

// TourSnapshot freezes the tour as it was when the booking was made.
type TourSnapshot struct {
	ID       string `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	Price    Money  `bson:"price" json:"price"`
	Unit     string `bson:"unit,omitempty" json:"unit,omitempty"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"`
}

// GuideSnapshot freezes the guide's contact details and rate.
type GuideSnapshot struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	Location  string `bson:"location,omitempty" json:"location,omitempty"`
	DailyRate Money  `bson:"dailyRate" json:"dailyRate"`
}

type TravelerSnapshot struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

// Booking reserves a guide for an inclusive range of calendar days.
type Booking struct {
	ID                string           `bson:"id" json:"id"`
	TravelerID        string           `bson:"travelerId" json:"travelerId"`
	GuideID           string           `bson:"guideId" json:"tourGuideId"`
	TourID            string           `bson:"tourId" json:"tourId"`
	FromDate          Date             `bson:"fromDate" json:"fromDate"`
	ToDate            Date             `bson:"toDate" json:"toDate"` // inclusive
	Quantity          int              `bson:"quantity" json:"quantity"`
	Status            BookingStatus    `bson:"status" json:"status"`
	TotalPrice        Money            `bson:"totalPrice" json:"totalPriceMinor"` // immutable after creation
	Currency          string           `bson:"currency" json:"currency"`
	CheckoutSessionID string           `bson:"checkoutSessionId,omitempty" json:"checkoutSessionId,omitempty"`
	CheckoutURL       string           `bson:"checkoutUrl,omitempty" json:"-"`
	TourSnapshot      TourSnapshot     `bson:"tourSnapshot" json:"tourSnapshot"`
	GuideSnapshot     GuideSnapshot    `bson:"guideSnapshot" json:"guideSnapshot"`
	TravelerSnapshot  TravelerSnapshot `bson:"travelerSnapshot" json:"travelerSnapshot"`
	CreatedAt         time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Days returns every calendar day covered by the booking.
func (b Booking) Days() []Date {
	var days []Date
	for d := b.FromDate; d <= b.ToDate; d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Overlaps is the inclusive-inclusive interval intersection test.
func (b Booking) Overlaps(from, to Date) bool {
	return b.FromDate <= to && b.ToDate >= from
}

// BookingRequest is the traveler's booking payload after decoding.
type BookingRequest struct {
	TourGuideID string `json:"tourGuideId" binding:"required"`
	TourID      string `json:"tourId" binding:"required"`
	FromDate    string `json:"fromDate" binding:"required"`
	ToDate      string `json:"toDate" binding:"required"`
	Quantity    int    `json:"quantity"`
}

// Actor identifies the authenticated caller. GuideID is set only when the
// caller owns a guide profile.
type Actor struct {
	UserID  string
	Role    string
	Name    string
	Email   string
	GuideID string
}

const (
	RoleTraveler = "user"
	RoleGuide    = "guide"
	RoleAdmin    = "admin"
)
