package models

import "time"

// TourUnits are the accepted pricing units of a tour.
var TourUnits = []string{"person", "group", "day", "trip"}

// Tour is an offering listed by a guide.
type Tour struct {
	ID          string    `bson:"id" json:"id"`
	GuideID     string    `bson:"guideId" json:"guideId"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Price       Money     `bson:"price" json:"-"`
	Unit        string    `bson:"unit,omitempty" json:"unit,omitempty"`
	Duration    string    `bson:"duration,omitempty" json:"duration,omitempty"`
	Deleted     bool      `bson:"deleted" json:"-"` // soft delete
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// TourInput is the create/update payload for a tour.
type TourInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Unit        *string  `json:"unit"`
	Duration    *string  `json:"duration"`
}

type TourDTO struct {
	Tour
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

func NewTourDTO(t Tour, currency string) TourDTO {
	return TourDTO{Tour: t, Price: t.Price.Decimal(currency), Currency: currency}
}
