package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloudpico-dailyagg/internal/config"
	"cloudpico-dailyagg/internal/modules/daily"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrStopped      = errors.New("publisher stopped")
)

// Publisher is a record sink that publishes every record it is given as one
// comma separated line on the configured topic.
type Publisher struct {
	client    mqtt.Client
	topic     string
	broker    string
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	published int

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	p := newPublisher(nil, cfg, logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.broker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	// One-shot run: a failed connect is reported, not retried in the background.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(cfg.MQTTConnectTimeout)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", p.broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

func newPublisher(client mqtt.Client, cfg config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		topic:  cfg.MQTTTopic,
		broker: fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort),
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Connect waits for the broker connection while respecting ctx and Disconnect.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect %s: %w", p.broker, err)
			}
			p.setConnected(true)
			return nil
		}

		select {
		case <-ctx.Done():
			p.client.Disconnect(0)
			return ctx.Err()
		case <-p.stopCh:
			p.client.Disconnect(0)
			return ErrStopped
		default:
		}
	}
}

// Write publishes one record with QoS 1 and waits for the broker ack.
func (p *Publisher) Write(record []string) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	payload, err := daily.EncodeLine(record)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		p.logger.Error("failed to publish record", "topic", p.topic, "error", err)
		return fmt.Errorf("publish record: %w", err)
	}

	p.mu.Lock()
	p.published++
	p.mu.Unlock()
	p.logger.Debug("published record", "topic", p.topic, "fields", len(record))
	return nil
}

// Published returns the number of records acknowledged by the broker.
func (p *Publisher) Published() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published
}

func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Disconnect is idempotent. After it, Connect returns ErrStopped.
func (p *Publisher) Disconnect() {
	p.stopOnce.Do(func() { close(p.stopCh) })

	if p.client != nil {
		p.client.Disconnect(250)
	}

	p.setConnected(false)
	p.logger.Info("mqtt disconnected", "published", p.Published())
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
