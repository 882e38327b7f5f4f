package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/bbqreviews/internal/domain"
)

// SummaryPrompt is the instruction shared by all summariser backends.
const SummaryPrompt = `You are summarising barbecue restaurant reviews for a friend deciding where to eat.
In two or three sentences, name the standout spots and dishes and mention how they were rated.
Reply in plain text without headings. The reviews follow, one per line,
format: spot | dish | rating | notes`

var ErrNoReviews = errors.New("no reviews to summarise")

type Summarizer interface {
	Summarize(ctx context.Context, reviews []domain.Review) (string, error)
}

// BuildPrompt renders the full prompt for reviews.
func BuildPrompt(reviews []domain.Review) (string, error) {
	if len(reviews) == 0 {
		return "", ErrNoReviews
	}

	var b strings.Builder
	b.WriteString(SummaryPrompt)
	b.WriteString("\n\n")
	for _, r := range reviews {
		fmt.Fprintf(&b, "%s | %s | %d/%d | %s\n", oneLine(r.Spot), oneLine(r.Dish), r.Rating, domain.MaxRating, oneLine(r.Notes))
	}
	return b.String(), nil
}

// CleanResponse strips leading preamble lines ("Here is a summary:") and
// surrounding whitespace from a model reply.
func CleanResponse(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	start := 0
	for start < len(lines) {
		line := strings.TrimSpace(lines[start])
		if line == "" || (isPreamble(line) && strings.HasSuffix(line, ":")) {
			start++
			continue
		}
		break
	}

	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}

func isPreamble(line string) bool {
	for _, p := range []string{"Here", "Sure", "Based on"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// oneLine keeps a field from breaking the one-review-per-line format.
func oneLine(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "|", "/")), " ")
}
