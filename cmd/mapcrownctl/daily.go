package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/quiz"
)

func newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Print the daily challenge for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dateFlag, _ := cmd.Flags().GetString("date")
			mode, _ := cmd.Flags().GetString("mode")
			focus, _ := cmd.Flags().GetBool("focus")
			answers, _ := cmd.Flags().GetBool("answers")
			xlsx, _ := cmd.Flags().GetString("xlsx")

			date := time.Now()
			if dateFlag != "" {
				var err error
				if date, err = time.ParseInLocation(quiz.DateLayout, dateFlag, time.Local); err != nil {
					return fmt.Errorf("--date must look like %s: %w", quiz.DateLayout, err)
				}
			}

			ds, err := openDatasets(cmd)
			if err != nil {
				return err
			}

			regional := place.CountryFocus(ds.cfg.Focus.Terms, ds.cfg.Focus.Codes)
			pools := make(map[place.Category]quiz.Pool)
			for _, c := range place.All() {
				doc, err := ds.loader.Load(cmd.Context(), c)
				if err != nil {
					slog.Warn("skipping category", "category", c, "error", err)
					continue
				}
				p := quiz.PoolFromDocument(c, doc, ds.resolver, nil)
				if focus {
					p = quiz.Narrow(p, quiz.PoolFromDocument(c, doc, ds.resolver, regional), ds.cfg.Quiz.MinFocusPool)
				}
				pools[c] = p
			}

			d, err := quiz.GenerateDaily(quiz.Seed(date, mode, focus), pools)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daily challenge %s (%s)\n", d.Seed.Date, d.Seed.ExamMode)
			for i, q := range d.Questions {
				fmt.Fprintf(out, "\n%2d. [%s] %s\n", i+1, q.Category, q.Prompt)
				for j, o := range q.Options {
					mark := " "
					if answers && j == q.Correct {
						mark = "*"
					}
					fmt.Fprintf(out, "   %s %c) %s\n", mark, 'A'+j, o)
				}
			}

			if xlsx != "" {
				f, err := os.Create(xlsx)
				if err != nil {
					return err
				}
				if err := quiz.ExportDaily(f, d); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nWrote %s\n", xlsx)
			}
			return nil
		},
	}
	cmd.Flags().String("date", "", "Calendar day as YYYY-MM-DD (default today)")
	cmd.Flags().String("mode", "general", "Exam mode used in the seed")
	cmd.Flags().Bool("focus", false, "Restrict questions to the regional focus")
	cmd.Flags().Bool("answers", false, "Mark the correct option")
	cmd.Flags().String("xlsx", "", "Also write the challenge to this spreadsheet")
	return cmd
}
