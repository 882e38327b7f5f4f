package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★★★", stars(5))
	assert.Equal(t, "★", stars(1))
	assert.Empty(t, stars(0))
	assert.Empty(t, stars(-2))
}

func TestRatingChoices(t *testing.T) {
	assert.Equal(t, []int{5, 4, 3, 2, 1}, ratingChoices())
}

func TestTimeFormatting(t *testing.T) {
	ts := time.Date(2025, 7, 4, 18, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	assert.Equal(t, "2025-07-04T22:30:00Z", isoTime(ts))
	assert.Equal(t, "Jul 4, 2025, 10:30 PM UTC", displayTime(ts))
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
	assert.False(t, isHTMX(req))
	req.Header.Set("HX-Request", "true")
	assert.True(t, isHTMX(req))
}

func TestFilterFromQuery(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/", "all"},
		{"/?filter=", "all"},
		{"/?filter=3", "3"},
		{"/?filter=all", "all"},
		{"/?rating=3", "all"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.want, string(filterFromQuery(req)))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://unpkg.com")
}
