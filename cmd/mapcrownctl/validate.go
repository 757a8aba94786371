package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/quiz"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load every configured dataset and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := openDatasets(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			failed := 0
			for _, c := range place.All() {
				doc, err := ds.loader.Load(cmd.Context(), c)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL  %-10s %v\n", c, err)
					var de *dataset.DataError
					if errors.As(err, &de) {
						fmt.Fprintf(out, "      hint: %s\n", de.Hint())
					}
					continue
				}
				pool := quiz.PoolFromDocument(c, doc, ds.resolver, nil)
				status := "ok"
				if pool.Len() < quiz.OptionCount {
					status = "warn"
				}
				fmt.Fprintf(out, "%-4s  %-10s %d features, %d quiz names\n", status, c, len(doc.Features), pool.Len())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d datasets failed to load", failed, len(place.All()))
			}
			return nil
		},
	}
}
