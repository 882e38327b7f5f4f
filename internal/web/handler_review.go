package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vbonduro/bbqreviews/internal/domain"
)

// reviewForm carries submitted values back into the form. Invalid names the
// field that failed validation.
type reviewForm struct {
	Spot    string
	Dish    string
	Rating  int
	Notes   string
	Filter  domain.RatingFilter
	Invalid string
}

type reviewsPage struct {
	Filter        domain.RatingFilter
	Filters       []domain.RatingFilter
	Reviews       []domain.Review
	Form          reviewForm
	DigestEnabled bool
}

var pageFiles = []string{
	"base.html", "pages/reviews.html", "partials/review_form.html", "partials/review_list.html",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	s.renderReviewsPage(w, http.StatusOK, filter, reviewForm{Rating: domain.MaxRating, Filter: filter})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	// HTMX partial update: return only the list.
	if isHTMX(r) {
		s.renderReviewList(w, http.StatusOK, filter)
		return
	}

	s.renderReviewsPage(w, http.StatusOK, filter, reviewForm{Rating: domain.MaxRating, Filter: filter})
}

const maxFormBytes = 64 * 1024

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	// An unparsable rating becomes 0 and is rejected by validation.
	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	input := domain.ReviewInput{
		Spot:   r.PostFormValue("spot"),
		Dish:   r.PostFormValue("dish"),
		Rating: rating,
		Notes:  r.PostFormValue("notes"),
	}
	filter := domain.ParseRatingFilter(r.PostFormValue("filter"))

	_, err := s.reviews.Add(r.Context(), input)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		form := reviewForm{
			Spot:    input.Spot,
			Dish:    input.Dish,
			Rating:  input.Rating,
			Notes:   input.Notes,
			Filter:  filter,
			Invalid: verr.Field,
		}
		s.logger.Debug("review rejected", "field", verr.Field)
		if isHTMX(r) {
			// The form posts into the review list; send the re-rendered form
			// back to its own place instead.
			w.Header().Set("HX-Retarget", "#review-form")
			w.Header().Set("HX-Reswap", "outerHTML")
			if err := s.renderPartial(w, http.StatusUnprocessableEntity, "partials/review_form.html", "review_form", form); err != nil {
				s.logger.Error("render partial failed", "error", err)
			}
			return
		}
		s.renderReviewsPage(w, http.StatusUnprocessableEntity, filter, form)
		return
	case err != nil:
		http.Error(w, "failed to add review", http.StatusInternalServerError)
		s.logger.Error("add review failed", "error", err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", "review-added")
		s.renderReviewList(w, http.StatusOK, filter)
		return
	}

	http.Redirect(w, r, "/?filter="+url.QueryEscape(string(filter)), http.StatusSeeOther)
}

// handleHealth reports ready only once the review list has been loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.reviews.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"}, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) renderReviewsPage(w http.ResponseWriter, status int, filter domain.RatingFilter, form reviewForm) {
	data := reviewsPage{
		Filter:        filter,
		Filters:       domain.RatingOptions(),
		Reviews:       s.reviews.Visible(filter),
		Form:          form,
		DigestEnabled: s.summarizer != nil,
	}
	if err := s.renderPage(w, status, data, pageFiles...); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) renderReviewList(w http.ResponseWriter, status int, filter domain.RatingFilter) {
	if err := s.renderPartial(w, status, "partials/review_list.html", "review_list", s.reviews.Visible(filter)); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func filterFromQuery(r *http.Request) domain.RatingFilter {
	return domain.ParseRatingFilter(r.URL.Query().Get("filter"))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
