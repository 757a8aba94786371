package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mapcrown/mapcrown/internal/enrich"
	"github.com/mapcrown/mapcrown/internal/place"
)

func newFactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts <category> <name>",
		Short: "Fetch quick facts for a place; countries also show live details",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := place.Parse(args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := func(base string) enrich.ClientOptions {
				return enrich.ClientOptions{BaseURL: base, UserAgent: cfg.Enrich.UserAgent, Timeout: cfg.Enrich.Timeout}
			}
			out := cmd.OutOrStdout()

			if c == place.Countries {
				countries := enrich.NewCountryService(
					enrich.NewRESTCountriesClient(opts(cfg.Enrich.RESTCountriesURL)),
					enrich.NewWikidataClient(opts(cfg.Enrich.WikidataURL)),
					nil,
					cfg.Enrich.Timeout,
				)
				country, err := countries.Lookup(cmd.Context(), place.Properties{}, name)
				if err != nil {
					fmt.Fprintf(out, "Live details unavailable: %v\n\n", err)
				} else {
					for _, row := range country.Rows(place.NewFormatter(place.DefaultLocale)) {
						fmt.Fprintf(out, "%s: %s\n", row.Label, row.Value)
					}
					fmt.Fprintln(out)
				}
			}

			facts := enrich.NewFactsService(
				enrich.NewWikipediaClient(opts(cfg.Enrich.WikipediaURL)),
				nil,
				enrich.FactsOptions{MaxFacts: cfg.Facts.MaxFacts, MinSentenceLength: cfg.Facts.MinSentenceLength, Timeout: cfg.Enrich.Timeout},
			).Facts(cmd.Context(), c, name)

			if facts.Title != "" {
				fmt.Fprintf(out, "Quick facts: %s\n", facts.Title)
			}
			for i, f := range facts.Items {
				fmt.Fprintf(out, "%d. %s\n", i+1, f)
			}
			return nil
		},
	}
}
