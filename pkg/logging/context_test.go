package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("WithRegion adds region to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithRegion(ctx, "GA")

		// Extract logger and verify it has the region field
		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithSource adds source to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithSource(ctx, "csv")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithOperation adds operation to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithOperation(ctx, "match_locations")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithInput adds input file to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithInput(ctx, "rankings.csv")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithFields adds custom fields to context", func(t *testing.T) {
		ctx := context.Background()
		fields := map[string]interface{}{
			"job_id": "123",
			"run_id": "abc-def",
		}
		ctx = logging.WithFields(ctx, fields)

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("FromContext returns logger from context", func(t *testing.T) {
		ctx := context.Background()

		// First call should create a new logger
		logger1 := logging.FromContext(ctx)
		assert.NotNil(t, logger1)

		// Add region and get logger again
		ctx = logging.WithRegion(ctx, "TX")
		logger2 := logging.FromContext(ctx)
		assert.NotNil(t, logger2)
	})

	t.Run("Ctx extracts logger from context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithRegion(ctx, "WI")

		logger := logging.Ctx(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("chaining context functions", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithRegion(ctx, "GA")
		ctx = logging.WithSource(ctx, "kmz")
		ctx = logging.WithOperation(ctx, "export_region")
		ctx = logging.WithInput(ctx, "stores.kmz")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})
}
