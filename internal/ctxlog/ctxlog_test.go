package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("returns embedded logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := WithLogger(context.Background(), logger)

		FromContext(ctx).Info("hello")

		assert.Same(t, logger, FromContext(ctx))
		assert.Contains(t, buf.String(), "hello")
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("discard drops records", func(t *testing.T) {
		ctx := Discard(context.Background())
		assert.NotSame(t, slog.Default(), FromContext(ctx))
		assert.False(t, FromContext(ctx).Enabled(ctx, slog.LevelError))
	})
}
