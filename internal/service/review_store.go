package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/bbqreviews/internal/domain"
)

// DefaultStorageKey is the key the review list is persisted under.
const DefaultStorageKey = "bbq-reviews"

// ErrNotLoaded is returned by mutations attempted before Init.
var ErrNotLoaded = errors.New("reviews not loaded")

// kvRepository is the subset of store.KVStore that ReviewStore requires.
type kvRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ReviewStore owns the review list. The whole list is mirrored to a single
// key-value entry and rewritten on every mutation.
type ReviewStore struct {
	kv     kvRepository
	key    string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	mu      sync.RWMutex
	reviews []domain.Review
	loaded  bool
}

type Option func(*ReviewStore)

func WithClock(now func() time.Time) Option {
	return func(s *ReviewStore) { s.now = now }
}

func WithStorageKey(key string) Option {
	return func(s *ReviewStore) { s.key = key }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *ReviewStore) { s.newID = newID }
}

func NewReviewStore(kv kvRepository, logger *slog.Logger, opts ...Option) *ReviewStore {
	s := &ReviewStore{
		kv:     kv,
		key:    DefaultStorageKey,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted list. Anything that is not a well-formed array of
// reviews yields the seed set; Load never fails.
func (s *ReviewStore) Load(ctx context.Context) []domain.Review {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read stored reviews, using seed set", "key", s.key, "error", err)
		return s.seed()
	}
	if !found || raw == "" {
		s.logger.Info("no stored reviews, using seed set", "key", s.key)
		return s.seed()
	}

	reviews, err := decodeReviews(raw)
	if err != nil {
		s.logger.Warn("stored reviews are corrupt, using seed set", "key", s.key, "error", err)
		return s.seed()
	}

	s.logger.Debug("reviews loaded", "key", s.key, "count", len(reviews))
	return reviews
}

// Init loads the persisted list into memory. Only the first call has an
// effect.
func (s *ReviewStore) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.reviews = s.Load(ctx)
	s.loaded = true
}

func (s *ReviewStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Save replaces the persisted list with reviews.
func (s *ReviewStore) Save(ctx context.Context, reviews []domain.Review) error {
	data, err := encodeReviews(reviews)
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}
	return s.kv.Set(ctx, s.key, string(data))
}

// Add validates in, appends the resulting review and persists the list. The
// in-memory list is left untouched when validation or saving fails.
func (s *ReviewStore) Add(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	spot := strings.TrimSpace(in.Spot)
	dish := strings.TrimSpace(in.Dish)
	notes := strings.TrimSpace(in.Notes)

	switch {
	case spot == "":
		return domain.Review{}, &domain.ValidationError{Field: "spot"}
	case dish == "":
		return domain.Review{}, &domain.ValidationError{Field: "dish"}
	case in.Rating < domain.MinRating || in.Rating > domain.MaxRating:
		return domain.Review{}, &domain.ValidationError{Field: "rating"}
	}
	if notes == "" {
		notes = domain.DefaultNotes
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.Review{}, ErrNotLoaded
	}

	review := domain.Review{
		ID:        s.newID(),
		Spot:      spot,
		Dish:      dish,
		Rating:    in.Rating,
		Notes:     notes,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	next := append(slices.Clip(s.reviews), review)
	if err := s.Save(ctx, next); err != nil {
		return domain.Review{}, fmt.Errorf("failed to save reviews: %w", err)
	}
	s.reviews = next

	s.logger.Info("review added", "id", review.ID, "spot", review.Spot, "rating", review.Rating, "total", len(next))
	return review, nil
}

// Reviews returns a copy of the list in insertion order.
func (s *ReviewStore) Reviews() []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reviews)
}

// Filtered yields the reviews matching filter in insertion order. Each
// iteration reads the current list.
func (s *ReviewStore) Filtered(filter domain.RatingFilter) iter.Seq[domain.Review] {
	return func(yield func(domain.Review) bool) {
		for _, r := range s.Reviews() {
			if !filter.Matches(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Visible returns the reviews matching filter, newest first.
func (s *ReviewStore) Visible(filter domain.RatingFilter) []domain.Review {
	return SortedByRecency(slices.Collect(s.Filtered(filter)))
}

// Export writes the list exactly as Save would persist it.
func (s *ReviewStore) Export(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeReviews(s.Reviews())
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// SortedByRecency returns a copy of reviews ordered newest first. Reviews
// with equal timestamps keep their relative order.
func SortedByRecency(reviews []domain.Review) []domain.Review {
	out := slices.Clone(reviews)
	slices.SortStableFunc(out, func(a, b domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *ReviewStore) seed() []domain.Review {
	now := s.now().UTC().Truncate(time.Millisecond)
	return []domain.Review{
		{
			Spot:      "Oak & Ember BBQ",
			Dish:      "Brisket Sandwich",
			Rating:    5,
			Notes:     "Incredible bark, perfectly rendered fat, and tangy pickles.",
			CreatedAt: now,
		},
		{
			Spot:      "Hickory Haven",
			Dish:      "Pulled Pork Plate",
			Rating:    4,
			Notes:     "Great smoke flavor and generous portions. Slaw was super fresh.",
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
}

// storedReview mirrors domain.Review with pointer fields so missing keys can
// be told apart from zero values.
type storedReview struct {
	ID        *string    `json:"id"`
	Spot      *string    `json:"spot"`
	Dish      *string    `json:"dish"`
	Rating    *int       `json:"rating"`
	Notes     *string    `json:"notes"`
	CreatedAt *time.Time `json:"createdAt"`
}

func decodeReviews(raw string) ([]domain.Review, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("not a JSON array: %w", err)
	}
	if elems == nil {
		return nil, errors.New("not a JSON array: null")
	}

	reviews := make([]domain.Review, 0, len(elems))
	for i, elem := range elems {
		if !bytes.HasPrefix(bytes.TrimSpace(elem), []byte("{")) {
			return nil, fmt.Errorf("element %d is not an object", i)
		}

		var sr storedReview
		if err := json.Unmarshal(elem, &sr); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if sr.Spot == nil || sr.Dish == nil || sr.Rating == nil || sr.CreatedAt == nil {
			return nil, fmt.Errorf("element %d is missing required fields", i)
		}

		r := domain.Review{
			Spot:      *sr.Spot,
			Dish:      *sr.Dish,
			Rating:    *sr.Rating,
			CreatedAt: sr.CreatedAt.UTC(),
		}
		if sr.ID != nil {
			r.ID = *sr.ID
		}
		if sr.Notes != nil {
			r.Notes = *sr.Notes
		}
		reviews = append(reviews, r)
	}

	return reviews, nil
}

func encodeReviews(reviews []domain.Review) ([]byte, error) {
	if reviews == nil {
		reviews = []domain.Review{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reviews); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
