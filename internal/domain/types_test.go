package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingFilterMatches(t *testing.T) {
	three := Review{Rating: 3}

	tests := []struct {
		filter RatingFilter
		want   bool
	}{
		{AllRatings, true},
		{"3", true},
		{"4", false},
		{"3.0", false},
		{" 3", false},
		{"abc", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(three))
		})
	}
}

func TestParseRatingFilter(t *testing.T) {
	assert.Equal(t, AllRatings, ParseRatingFilter(""))
	assert.Equal(t, AllRatings, ParseRatingFilter("all"))
	assert.Equal(t, RatingFilter("2"), ParseRatingFilter("2"))
}

func TestRatingOptions(t *testing.T) {
	assert.Equal(t, []RatingFilter{"all", "1", "2", "3", "4", "5"}, RatingOptions())
}

func TestValidationErrorMessage(t *testing.T) {
	var err error = fmt.Errorf("add review: %w", &ValidationError{Field: "spot"})

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "spot", verr.Field)
	assert.Equal(t, "spot is required", verr.Error())
	assert.Equal(t, "rating must be between 1 and 5", (&ValidationError{Field: "rating"}).Error())
}
