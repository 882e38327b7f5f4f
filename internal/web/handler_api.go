package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vbonduro/bbqreviews/internal/digest"
	"github.com/vbonduro/bbqreviews/internal/domain"
)

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleAPIListReviews(w http.ResponseWriter, r *http.Request) {
	reviews := s.reviews.Visible(filterFromQuery(r))
	if reviews == nil {
		reviews = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, reviews, s.logger)
}

func (s *Server) handleAPICreateReview(w http.ResponseWriter, r *http.Request) {
	var input domain.ReviewInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := dec.Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"}, s.logger)
		return
	}

	review, err := s.reviews.Add(r.Context(), input)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, apiError{Error: verr.Error(), Field: verr.Field}, s.logger)
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to add review"}, s.logger)
		s.logger.Error("add review failed", "error", err)
		return
	}

	writeJSON(w, http.StatusCreated, review, s.logger)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		http.NotFound(w, r)
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), s.reviews.Visible(filterFromQuery(r)))
	if errors.Is(err, digest.ErrNoReviews) {
		summary = "No reviews match this filter yet."
	} else if err != nil {
		http.Error(w, "failed to summarise reviews", http.StatusBadGateway)
		s.logger.Error("summarise reviews failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(summary)); err != nil {
		s.logger.Error("write digest failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write json failed", "error", err)
	}
}
