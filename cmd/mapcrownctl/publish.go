package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/place"
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Validate a GeoJSON file and upload it to the dataset bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("key")
			category, _ := cmd.Flags().GetString("category")
			if key == "" {
				key = filepath.Base(args[0])
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			n, err := checkDocument(category, key, data)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Data.Source != "s3" {
				return fmt.Errorf("publish needs MAPCROWN_DATA_SOURCE=s3, got %q", cfg.Data.Source)
			}
			src, err := dataset.NewSource(cfg.Data)
			if err != nil {
				return err
			}
			store, ok := src.(*dataset.ObjectSource)
			if !ok {
				return fmt.Errorf("data source %q does not accept uploads", cfg.Data.Source)
			}
			if err := store.Put(cmd.Context(), key, bytes.NewReader(data), int64(len(data))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%d features) to %s/%s\n", args[0], n, cfg.Data.S3.Bucket, key)
			return nil
		},
	}
	cmd.Flags().String("key", "", "Object key (default the file name)")
	cmd.Flags().String("category", "countries", "Category the file is checked as")
	return cmd
}

// checkDocument runs the loader's validation on data and returns the feature count.
func checkDocument(category, key string, data []byte) (int, error) {
	c, err := place.Parse(category)
	if err != nil {
		return 0, err
	}
	v, err := dataset.NewValidator()
	if err != nil {
		return 0, err
	}
	if err := v.Validate(data); err != nil {
		return 0, &dataset.DataError{Category: c, Path: key, Err: err}
	}
	doc, err := dataset.Parse(c, key, data)
	if err != nil {
		return 0, &dataset.DataError{Category: c, Path: key, Err: err}
	}
	return len(doc.Features), nil
}
