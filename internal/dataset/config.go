package dataset

import (
	"fmt"
	"os"

	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/config"
)

// NewSource builds the Source selected by cfg.Source.
func NewSource(cfg config.DataConfig) (Source, error) {
	switch cfg.Source {
	case "file":
		return FSSource{FS: os.DirFS(cfg.Dir)}, nil
	case "http":
		return NewHTTPSource(cfg.BaseURL), nil
	case "s3":
		return NewObjectSource(ObjectOptions{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

// Paths converts the configured file names into a per-category map.
func Paths(cfg config.DataConfig) map[place.Category]string {
	out := make(map[place.Category]string, len(cfg.Files))
	for name, p := range cfg.Files {
		if c, err := place.Parse(name); err == nil && p != "" {
			out[c] = p
		}
	}
	return out
}
