package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/g5becks/fractaldb/internal/ctxutil"
)

func TestLoggerFrom_DefaultsWhenAbsent(t *testing.T) {
	assert.Equal(t, slog.Default(), ctxutil.LoggerFrom(context.Background()))
}

func TestWithLogger_RoundTrips(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := ctxutil.WithLogger(context.Background(), logger)

	assert.Equal(t, logger, ctxutil.LoggerFrom(ctx))
}
