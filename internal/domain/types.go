package domain

import (
	"strconv"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5

	// DefaultNotes replaces notes left empty on submission.
	DefaultNotes = "No notes added."
)

type Review struct {
	ID        string    `json:"id,omitempty"`
	Spot      string    `json:"spot"`
	Dish      string    `json:"dish"`
	Rating    int       `json:"rating"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput is an unvalidated review as submitted by a form, the CLI or the
// JSON API.
type ReviewInput struct {
	Spot   string `json:"spot"`
	Dish   string `json:"dish"`
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

// ValidationError reports the input field that rejected a submission.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field == "rating" {
		return "rating must be between 1 and 5"
	}
	return e.Field + " is required"
}

// RatingFilter selects reviews for display. It is either AllRatings or the
// literal form of a rating, matched as text.
type RatingFilter string

const AllRatings RatingFilter = "all"

func ParseRatingFilter(s string) RatingFilter {
	if s == "" {
		return AllRatings
	}
	return RatingFilter(s)
}

func (f RatingFilter) Matches(r Review) bool {
	return f == AllRatings || string(f) == strconv.Itoa(r.Rating)
}

// RatingOptions lists the values offered by the filter control.
func RatingOptions() []RatingFilter {
	opts := []RatingFilter{AllRatings}
	for i := MinRating; i <= MaxRating; i++ {
		opts = append(opts, RatingFilter(strconv.Itoa(i)))
	}
	return opts
}
