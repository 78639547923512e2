package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloudpico-dailyagg/internal/config"
	"cloudpico-dailyagg/internal/kafka"
	"cloudpico-dailyagg/internal/mqtt"
)

type recordSink interface {
	Write(record []string) error
	Flush(ctx context.Context) error
	// Abort drops what the sink holds after a failed run. Close is still called.
	Abort()
	Close() error
	// Delivered is the number of records handed off for good.
	Delivered() int
}

func openSink(ctx context.Context, cfg config.Config, logger *slog.Logger, stdout io.Writer) (recordSink, error) {
	switch cfg.OutputSink {
	case config.SinkCSV:
		return openCSVSink(cfg.OutputPath, stdout)
	case config.SinkMQTT:
		return openMQTTSink(ctx, cfg, logger)
	case config.SinkKafka:
		s, err := kafka.NewSink(cfg, logger)
		if err != nil {
			return nil, err
		}
		return &kafkaSink{Sink: s}, nil
	default:
		return nil, unknown("output sink", cfg.OutputSink)
	}
}

// csvSink writes to stdout or to a file. A file output is removed on Abort so
// a failed run leaves nothing behind.
type csvSink struct {
	*csv.Writer
	file    *os.File
	written int
	flushed int
	aborted bool
}

func openCSVSink(path string, stdout io.Writer) (*csvSink, error) {
	if path == "" {
		return &csvSink{Writer: csv.NewWriter(stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &csvSink{Writer: csv.NewWriter(f), file: f}, nil
}

func (s *csvSink) Write(record []string) error {
	if err := s.Writer.Write(record); err != nil {
		return err
	}
	s.written++
	return nil
}

func (s *csvSink) Flush(_ context.Context) error {
	s.Writer.Flush()
	if err := s.Writer.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	s.flushed = s.written
	return nil
}

func (s *csvSink) Abort() { s.aborted = true }

func (s *csvSink) Delivered() int {
	if s.aborted {
		return 0
	}
	return s.flushed
}

func (s *csvSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	if s.aborted {
		if rmErr := os.Remove(s.file.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

type mqttSink struct {
	*mqtt.Publisher
}

func openMQTTSink(ctx context.Context, cfg config.Config, logger *slog.Logger) (*mqttSink, error) {
	p := mqtt.NewPublisher(cfg, logger)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.MQTTConnectTimeout)
	defer cancel()
	if err := p.Connect(connectCtx); err != nil {
		p.Disconnect()
		return nil, fmt.Errorf("mqtt sink: %w", err)
	}
	return &mqttSink{Publisher: p}, nil
}

// Records are acknowledged one by one in Write.
func (s *mqttSink) Flush(context.Context) error { return nil }

func (s *mqttSink) Abort() {}

func (s *mqttSink) Delivered() int { return s.Publisher.Published() }

func (s *mqttSink) Close() error {
	s.Publisher.Disconnect()
	return nil
}

type kafkaSink struct {
	*kafka.Sink
}

func (s *kafkaSink) Abort() { s.Sink.Discard() }

func (s *kafkaSink) Delivered() int { return s.Sink.Sent() }
