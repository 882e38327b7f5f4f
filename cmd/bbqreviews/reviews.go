package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/bbqreviews/internal/domain"
)

func newAddCmd() *cobra.Command {
	var input domain.ReviewInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			review, err := a.reviews.Add(cmd.Context(), input)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(review)
		},
	}
	cmd.Flags().StringVar(&input.Spot, "spot", "", "restaurant name")
	cmd.Flags().StringVar(&input.Dish, "dish", "", "dish ordered")
	cmd.Flags().IntVar(&input.Rating, "rating", domain.MaxRating, "rating from 1 to 5")
	cmd.Flags().StringVar(&input.Notes, "notes", "", "free-form notes")
	return cmd
}

func newListCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print reviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			return writeReviewList(cmd.OutOrStdout(), a.reviews.Visible(domain.ParseRatingFilter(filter)))
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(domain.AllRatings), "rating to show: all or 1-5")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored review document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if out == "" {
				return a.reviews.Export(cmd.Context(), cmd.OutOrStdout())
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := a.reviews.Export(cmd.Context(), f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write instead of stdout")
	return cmd
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Store a backup snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			scheduler, err := newBackupScheduler(a)
			if err != nil {
				return err
			}
			key, err := scheduler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}

// writeReviewList prints one review per line followed by its indented notes.
func writeReviewList(w io.Writer, reviews []domain.Review) error {
	if len(reviews) == 0 {
		_, err := fmt.Fprintln(w, "No reviews match this filter yet.")
		return err
	}
	for _, r := range reviews {
		if _, err := fmt.Fprintf(w, "%-5s  %s - %s (%s)\n    %s\n",
			starString(r.Rating), r.Spot, r.Dish, r.CreatedAt.UTC().Format(time.RFC3339), r.Notes); err != nil {
			return err
		}
	}
	return nil
}

func starString(rating int) string {
	return strings.Repeat("★", max(rating, 0))
}
