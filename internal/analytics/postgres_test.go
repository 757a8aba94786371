package analytics_test

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/mapcrown/mapcrown/internal/analytics"
	"github.com/mapcrown/mapcrown/internal/platform/database"
)

func TestPostgresLogger_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("mapcrown"),
		postgres.WithUsername("mapcrown"),
		postgres.WithPassword("mapcrown"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	db, err := database.New(ctx, dsn, 2, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() second run error = %v", err)
	}

	logger := analytics.NewPostgresLogger(db.Pool)
	for _, typ := range []string{analytics.FeatureSelected, analytics.FeatureSelected, analytics.QuizAnswered} {
		if err := logger.LogEvent(ctx, analytics.Event{SessionID: "sess-1", Type: typ}); err != nil {
			t.Fatalf("LogEvent() error = %v", err)
		}
	}

	counts, err := logger.CountByType(ctx, "sess-1")
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if counts[analytics.FeatureSelected] != 2 || counts[analytics.QuizAnswered] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
