package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloudpico-dailyagg/internal/config"
	"cloudpico-dailyagg/internal/modules/daily"

	"github.com/segmentio/kafka-go"
)

const headerKey = "header"

var ErrClosed = errors.New("kafka sink closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink buffers output records and writes them to one topic on Flush.
// The first record is the header and is keyed "header"; the rest are keyed by
// station name so a station's days land on the same partition.
type Sink struct {
	w       messageWriter
	topic   string
	lg      *slog.Logger
	now     func() time.Time
	pending []kafka.Message
	sent    int
	closed  bool
}

func NewSink(cfg config.Config, lg *slog.Logger) (*Sink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("no brokers provided")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	lg.Info("kafka writer created", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return newSink(w, cfg.KafkaTopic, lg), nil
}

func newSink(w messageWriter, topic string, lg *slog.Logger) *Sink {
	if lg == nil {
		lg = slog.Default()
	}
	return &Sink{w: w, topic: topic, lg: lg, now: time.Now}
}

func (s *Sink) Write(record []string) error {
	if s.closed {
		return ErrClosed
	}
	payload, err := daily.EncodeLine(record)
	if err != nil {
		return err
	}
	key := headerKey
	if len(s.pending) > 0 || s.sent > 0 {
		if len(record) > 0 {
			key = record[0]
		} else {
			key = ""
		}
	}
	s.pending = append(s.pending, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  s.now(),
	})
	return nil
}

// Flush writes every buffered record in one batch. On failure the batch stays
// buffered so a later Flush can retry it.
func (s *Sink) Flush(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.w.WriteMessages(ctx, s.pending...); err != nil {
		return fmt.Errorf("kafka write %s: %w", s.topic, err)
	}
	s.sent += len(s.pending)
	s.lg.Debug("kafka batch written", "topic", s.topic, "messages", len(s.pending))
	s.pending = s.pending[:0]
	return nil
}

// Discard drops buffered records without sending them.
func (s *Sink) Discard() {
	if n := len(s.pending); n > 0 {
		s.lg.Debug("kafka batch discarded", "topic", s.topic, "messages", n)
	}
	s.pending = s.pending[:0]
}

// Sent returns the number of records acknowledged by the brokers.
func (s *Sink) Sent() int { return s.sent }

func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if n := len(s.pending); n > 0 {
		s.lg.Warn("kafka sink closed with unsent records", "topic", s.topic, "pending", n)
	}
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	s.lg.Info("kafka writer closed", "topic", s.topic, "sent", s.sent)
	return nil
}
