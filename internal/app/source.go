package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloudpico-dailyagg/internal/config"
	"cloudpico-dailyagg/internal/db"
	"cloudpico-dailyagg/internal/modules/daily"
	"cloudpico-dailyagg/internal/modules/daily/source"
)

type recordSource interface {
	daily.RecordReader
	Close() error
}

func openSource(ctx context.Context, cfg config.Config, logger *slog.Logger, stdin io.Reader) (recordSource, error) {
	switch cfg.InputSource {
	case config.SourceCSV:
		return openCSVSource(cfg.InputPath, stdin)
	case config.SourceSQLite:
		return openSQLiteSource(ctx, cfg, logger)
	default:
		return nil, unknown("input source", cfg.InputSource)
	}
}

type csvSource struct {
	*daily.CSVReader
	closer io.Closer
}

func (s *csvSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func openCSVSource(path string, stdin io.Reader) (*csvSource, error) {
	var (
		r      io.Reader = stdin
		closer io.Closer
	)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		r, closer = f, f
	}
	return &csvSource{CSVReader: daily.NewCSVReader(r), closer: closer}, nil
}

type sqliteSource struct {
	*source.SQLiteSource
	db     *sql.DB
	logger *slog.Logger
}

func (s *sqliteSource) Close() error {
	s.logger.Info("sqlite source closed", "readings", s.SQLiteSource.Count())
	rowsErr := s.SQLiteSource.Close()
	if err := db.Close(s.db); err != nil {
		return err
	}
	return rowsErr
}

func openSQLiteSource(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqliteSource, error) {
	conn, err := db.OpenReadOnly(cfg, logger)
	if err != nil {
		return nil, err
	}
	src, err := source.NewSQLiteSource(ctx, conn, cfg.SourceLocation)
	if err != nil {
		_ = db.Close(conn)
		return nil, err
	}
	logger.Info("sqlite source opened", "path", cfg.SQLitePath, "timezone", cfg.SourceLocation.String())
	return &sqliteSource{SQLiteSource: src, db: conn, logger: logger}, nil
}
