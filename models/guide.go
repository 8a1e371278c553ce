package models

import "time"

// Vocabularies accepted for guide profiles and AI search filters.
var (
	VehicleTypes   = []string{"car", "van", "bus", "motorcycle", "bicycle", "walking", "other"}
	SpecialtyTypes = []string{
		"historical-tours", "cultural-tours", "adventure-tours", "food-tours", "nature-tours",
		"city-tours", "museum-tours", "photography-tours", "religious-tours", "shopping-tours",
	}
	Favourites = []string{
		"Photography", "Reading Books", "Cooking", "Hiking", "Cycling",
		"Listening to Music", "Traveling", "Swimming", "Drawing & Painting", "Yoga & Meditation",
	}
	Languages = []string{"english", "vietnamese", "thai", "french", "spanish", "chinese", "japanese", "korean"}
	Locations = []string{"vietnam", "thailand", "france", "spain", "china", "japan", "korea", "usa", "uk", "germany"}
)

// TourGuide is a guide profile together with its bookable schedule.
type TourGuide struct {
	ID              string    `bson:"id" json:"id"`
	UserID          string    `bson:"userId" json:"userId"` // owning user account, unique
	Name            string    `bson:"name" json:"name"`
	Email           string    `bson:"email" json:"email"`
	Phone           string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Country         string    `bson:"country,omitempty" json:"country,omitempty"`
	Bio             string    `bson:"bio,omitempty" json:"bio,omitempty"`
	DailyRate       Money     `bson:"dailyRate" json:"-"`
	Location        string    `bson:"location" json:"location"`
	Languages       []string  `bson:"languages" json:"languages"`
	ExperienceYears int       `bson:"experienceYears" json:"experienceYears"`
	Photos          []string  `bson:"photos,omitempty" json:"photos,omitempty"`
	Vehicle         string    `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Specialties     []string  `bson:"specialties,omitempty" json:"specialties,omitempty"`
	Favourites      []string  `bson:"favourites,omitempty" json:"favourites,omitempty"`
	RatingAvg       float64   `bson:"ratingAvg" json:"ratingAvg"`
	RatingCount     int       `bson:"ratingCount" json:"ratingCount"`
	IsActive        bool      `bson:"isActive" json:"isActive"`
	Schedule        Schedule  `bson:"schedule" json:"schedule"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// GuideProfileUpdate carries the editable profile fields; nil means unchanged.
type GuideProfileUpdate struct {
	Bio             *string   `json:"bio"`
	DailyRate       *float64  `json:"pricePerDay"`
	Location        *string   `json:"location"`
	Languages       *[]string `json:"languages"`
	ExperienceYears *int      `json:"experienceYears"`
	Photos          *[]string `json:"photos"`
	Vehicle         *string   `json:"vehicle"`
	Specialties     *[]string `json:"specialties"`
	Favourites      *[]string `json:"favourites"`
}

// GuideDTO is the public view of a guide with money rendered as decimals.
type GuideDTO struct {
	TourGuide
	PricePerDay string `json:"pricePerDay"`
	Currency    string `json:"currency"`
}

func NewGuideDTO(g TourGuide, currency string) GuideDTO {
	return GuideDTO{TourGuide: g, PricePerDay: g.DailyRate.Decimal(currency), Currency: currency}
}

// Contains reports whether v is one of the allowed values.
func Contains(allowed []string, v string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
