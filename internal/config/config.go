package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"

	SinkCSV   = "csv"
	SinkMQTT  = "mqtt"
	SinkKafka = "kafka"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	InputSource string
	// InputPath is read when InputSource is csv. Empty means stdin.
	InputPath  string
	OutputSink string
	// OutputPath is written when OutputSink is csv. Empty means stdout.
	OutputPath string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	// SourceLocation splits stored UTC timestamps into local station days.
	SourceLocation *time.Location

	MQTTBroker         string
	MQTTPort           int
	MQTTClientID       string
	MQTTTopic          string
	MQTTConnectTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "warn"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	inputSource := strings.ToLower(strings.TrimSpace(os.Getenv("INPUT_SOURCE")))
	if inputSource == "" {
		inputSource = SourceCSV
	}
	switch inputSource {
	case SourceCSV, SourceSQLite:
	default:
		return Config{}, fmt.Errorf("invalid INPUT_SOURCE %q (allowed: csv, sqlite)", inputSource)
	}

	outputSink := strings.ToLower(strings.TrimSpace(os.Getenv("OUTPUT_SINK")))
	if outputSink == "" {
		outputSink = SinkCSV
	}
	switch outputSink {
	case SinkCSV, SinkMQTT, SinkKafka:
	default:
		return Config{}, fmt.Errorf("invalid OUTPUT_SINK %q (allowed: csv, mqtt, kafka)", outputSink)
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "../dev/sqlite/app.db"
	}

	maxOpenConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS"))
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS"))
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	tzName := strings.TrimSpace(os.Getenv("SOURCE_TIMEZONE"))
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SOURCE_TIMEZONE %q: %w", tzName, err)
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (must be 1-65535)", mqttPort)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "cloudpico-dailyagg"
	}

	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "stations/daily"
	}

	mqttConnectTimeoutStr := strings.TrimSpace(os.Getenv("MQTT_CONNECT_TIMEOUT"))
	if mqttConnectTimeoutStr == "" {
		mqttConnectTimeoutStr = "5s"
	}
	mqttConnectTimeout, err := time.ParseDuration(mqttConnectTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_CONNECT_TIMEOUT %q: %w", mqttConnectTimeoutStr, err)
	}
	if mqttConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid MQTT_CONNECT_TIMEOUT %q (must be > 0)", mqttConnectTimeoutStr)
	}

	kafkaBrokers := parseList(os.Getenv("KAFKA_BROKERS"))
	if len(kafkaBrokers) == 0 {
		kafkaBrokers = []string{"localhost:9092"}
	}

	kafkaTopic := strings.TrimSpace(os.Getenv("KAFKA_TOPIC"))
	if kafkaTopic == "" {
		kafkaTopic = "stations.daily"
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		InputSource:           inputSource,
		InputPath:             stdioPath(os.Getenv("INPUT_PATH")),
		OutputSink:            outputSink,
		OutputPath:            stdioPath(os.Getenv("OUTPUT_PATH")),
		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SourceLocation:        loc,
		MQTTBroker:            mqttBroker,
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		MQTTTopic:             mqttTopic,
		MQTTConnectTimeout:    mqttConnectTimeout,
		KafkaBrokers:          kafkaBrokers,
		KafkaTopic:            kafkaTopic,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// stdioPath maps "-" to the empty path, which selects stdin or stdout.
func stdioPath(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
