// models/booking_response.go
package models

// PublicBookingData is the API view of a booking. Money is rendered as
// decimal strings in the booking's currency.
type PublicBookingData struct {
	Booking
	TotalPrice     string `json:"totalPrice"`
	TourPrice      string `json:"tourPrice"`
	GuideDailyRate string `json:"guideDailyRate"`
	Days           int    `json:"days"`
}

func NewPublicBookingData(b Booking) PublicBookingData {
	return PublicBookingData{
		Booking:        b,
		TotalPrice:     b.TotalPrice.Decimal(b.Currency),
		TourPrice:      b.TourSnapshot.Price.Decimal(b.Currency),
		GuideDailyRate: b.GuideSnapshot.DailyRate.Decimal(b.Currency),
		Days:           len(b.Days()),
	}
}

// BookingResponse is returned when a booking is created.
type BookingResponse struct {
	Booking     PublicBookingData `json:"booking"`
	CheckoutURL string            `json:"checkoutUrl"`
}
