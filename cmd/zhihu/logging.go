package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// setupLogging builds a colourised handler that also picks up attributes
// attached to the context with slogctx.With.
func setupLogging(ctx context.Context, w io.Writer, debug bool) (context.Context, *slog.Logger) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	tintHandler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		AddSource:  debug,
	})

	logger := slog.New(slogctx.NewHandler(tintHandler, nil))
	return slogctx.NewCtx(ctx, logger), logger
}
