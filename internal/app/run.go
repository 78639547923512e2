package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloudpico-dailyagg/internal/config"
	"cloudpico-dailyagg/internal/modules/daily"
)

// Run performs one aggregation: it connects the configured sink, opens the
// configured source, aggregates every record and flushes the result.
// The sink is connected first so an unreachable broker fails before any input is read.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, stdin io.Reader, stdout io.Writer) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"inputSource", cfg.InputSource,
		"inputPath", cfg.InputPath,
		"outputSink", cfg.OutputSink,
		"outputPath", cfg.OutputPath,
	)
	start := time.Now()

	out, err := openSink(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			logger.Error("sink close", "error", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	in, err := openSource(ctx, cfg, logger, stdin)
	if err != nil {
		out.Abort()
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil {
			logger.Error("source close", "error", closeErr)
		}
	}()

	if err := deliver(ctx, in, out); err != nil {
		return err
	}

	logger.Info("run complete",
		"inputSource", cfg.InputSource,
		"outputSink", cfg.OutputSink,
		"records", out.Delivered(),
		"elapsed", time.Since(start),
	)
	return nil
}

// deliver aggregates in into out and flushes it. Any failure aborts out so a
// failed run leaves no partial output behind.
func deliver(ctx context.Context, in daily.RecordReader, out recordSink) error {
	if err := daily.ProcessRecords(&ctxReader{ctx: ctx, r: in}, out); err != nil {
		out.Abort()
		return err
	}
	if err := out.Flush(ctx); err != nil {
		out.Abort()
		return err
	}
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   daily.RecordReader
}

func (c *ctxReader) Read() ([]string, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, err
	}
	return c.r.Read()
}

var errUnknownKind = errors.New("unknown kind")

func unknown(what, kind string) error {
	return fmt.Errorf("%s %q: %w", what, kind, errUnknownKind)
}
