package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/bbqreviews/internal/config"
	"github.com/vbonduro/bbqreviews/internal/domain"
)

// useTempDB points the commands at a fresh database file and quiet logging.
func useTempDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DB_PATH", filepath.Join(dir, "reviews.db"))
	t.Setenv("BACKUP_PATH", filepath.Join(dir, "backups"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWriteReviewList(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2025, 7, 4, 18, 30, 0, 0, time.UTC)
	err := writeReviewList(&buf, []domain.Review{
		{Spot: "Oak & Ember BBQ", Dish: "Brisket Sandwich", Rating: 5, Notes: "Incredible bark.", CreatedAt: created},
		{Spot: "Pit Stop", Dish: "Ribs", Rating: 3, Notes: "No notes added.", CreatedAt: created},
	})
	require.NoError(t, err)

	want := "★★★★★  Oak & Ember BBQ - Brisket Sandwich (2025-07-04T18:30:00Z)\n    Incredible bark.\n" +
		"★★★    Pit Stop - Ribs (2025-07-04T18:30:00Z)\n    No notes added.\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteReviewListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReviewList(&buf, nil))
	assert.Equal(t, "No reviews match this filter yet.\n", buf.String())
}

func TestNewSummarizer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := newSummarizer(&config.Config{DigestBackend: "none"}, logger)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = newSummarizer(&config.Config{DigestBackend: "claude"}, logger)
	assert.ErrorContains(t, err, "CLAUDE_API_KEY")

	s, err = newSummarizer(&config.Config{DigestBackend: "ollama", OllamaHost: "http://localhost:11434", OllamaModel: "llama3.2"}, logger)
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = newSummarizer(&config.Config{DigestBackend: "gpt"}, logger)
	assert.Error(t, err)
}

func TestAddListExport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping command test in short mode")
	}
	useTempDB(t)

	out, err := execute(t, "add", "--spot", "Pit Stop", "--dish", "Ribs", "--rating", "3")
	require.NoError(t, err)
	var added domain.Review
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Pit Stop", added.Spot)
	assert.Equal(t, "No notes added.", added.Notes)

	out, err = execute(t, "list", "--filter", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "★★★    Pit Stop - Ribs (")
	assert.NotContains(t, out, "Oak & Ember BBQ")

	out, err = execute(t, "export")
	require.NoError(t, err)
	var exported []domain.Review
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	require.Len(t, exported, 3)
	assert.Equal(t, "Oak & Ember BBQ", exported[0].Spot)
	assert.Equal(t, added.ID, exported[2].ID)
}

func TestAddRejectsInvalidReview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping command test in short mode")
	}
	useTempDB(t)

	_, err := execute(t, "add", "--spot", "Pit Stop", "--dish", "Ribs", "--rating", "7")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Field)
}

func TestBackupCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping command test in short mode")
	}
	dir := useTempDB(t)

	out, err := execute(t, "backup")
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "backups", "reviews_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Base(matches[0])+"\n", out)
}
