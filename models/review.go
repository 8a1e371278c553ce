package models

import "time"

// Review is a traveler's rating of a guide for one booking.
type Review struct {
	ID         string            `bson:"id" json:"id"`
	TravelerID string            `bson:"travelerId" json:"travelerId"`
	GuideID    string            `bson:"guideId" json:"guideId"`
	BookingID  string            `bson:"bookingId" json:"bookingId"`
	Rating     int               `bson:"rating" json:"rating"` // 1-5
	Comment    string            `bson:"comment,omitempty" json:"comment,omitempty"`
	Images     []string          `bson:"images,omitempty" json:"images,omitempty"`
	Traveler   *TravelerSnapshot `bson:"traveler,omitempty" json:"traveler,omitempty"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
}

type ReviewInput struct {
	BookingID string   `json:"bookingId" binding:"required"`
	Rating    int      `json:"rating" binding:"required"`
	Comment   string   `json:"comment"`
	Images    []string `json:"images"`
}

// Page is a fixed page/limit slice of results.
type Page[T any] struct {
	Results      []T   `json:"results"`
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
}

// NormalizePage clamps page and limit to sane values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
