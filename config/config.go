// Package config loads broker settings from the environment, optionally
// seeded from .env files, and turns them into msglog options.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/infigaming-com/go-msglog/errsink"
	"github.com/infigaming-com/go-msglog/msglog"
	"github.com/infigaming-com/go-msglog/observability/metrics"
	"github.com/infigaming-com/go-msglog/util"
)

const (
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkNone  = "none"
)

var ErrInvalidConfig = stderrors.New("config: invalid configuration")

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	IdleWaitMin time.Duration `env:"MSGLOG_IDLE_WAIT_MIN" envDefault:"50ms"`
	IdleWaitMax time.Duration `env:"MSGLOG_IDLE_WAIT_MAX" envDefault:"5s"`

	ErrorSink       string  `env:"MSGLOG_ERROR_SINK" envDefault:"log"`
	ErrorLogRate    float64 `env:"MSGLOG_ERROR_LOG_RATE" envDefault:"10"`
	ErrorLogBurst   int     `env:"MSGLOG_ERROR_LOG_BURST" envDefault:"20"`
	RedisAddr       string  `env:"REDIS_ADDR"`
	ErrorSinkKey    string  `env:"MSGLOG_ERROR_SINK_KEY" envDefault:"msglog:errors"`
	ErrorSinkMaxLen int64   `env:"MSGLOG_ERROR_SINK_MAX_LEN" envDefault:"1000"`

	Metrics Metrics `envPrefix:"METRICS_"`
}

type Metrics struct {
	Enabled        bool          `env:"ENABLED" envDefault:"false"`
	ServiceName    string        `env:"SERVICE_NAME" envDefault:"msglog"`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPEndpoint   string        `env:"OTLP_ENDPOINT"`
	GRPCEndpoint   string        `env:"OTLP_GRPC_ENDPOINT"`
	ExportInterval time.Duration `env:"EXPORT_INTERVAL" envDefault:"15s"`
	PrometheusAddr string        `env:"PROMETHEUS_ADDR"`
}

// Load reads the given .env files (".env" when none are named), then parses
// the environment. Missing files are skipped; variables already set in the
// process environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL: %v", ErrInvalidConfig, err)
	}
	if c.IdleWaitMin <= 0 || c.IdleWaitMax < c.IdleWaitMin {
		return fmt.Errorf("%w: idle wait must satisfy 0 < min <= max, got %s..%s", ErrInvalidConfig, c.IdleWaitMin, c.IdleWaitMax)
	}
	switch c.ErrorSink {
	case SinkLog:
		if c.ErrorLogRate <= 0 || c.ErrorLogBurst <= 0 {
			return fmt.Errorf("%w: error log rate and burst must be positive", ErrInvalidConfig)
		}
	case SinkRedis:
		if c.ErrorSinkKey == "" {
			return fmt.Errorf("%w: MSGLOG_ERROR_SINK_KEY required for redis sink", ErrInvalidConfig)
		}
	case SinkNone:
	default:
		return fmt.Errorf("%w: unknown error sink %q", ErrInvalidConfig, c.ErrorSink)
	}
	if c.Metrics.Enabled && c.Metrics.HTTPEndpoint == "" && c.Metrics.GRPCEndpoint == "" {
		return fmt.Errorf("%w: metrics enabled without an OTLP endpoint", ErrInvalidConfig)
	}
	return nil
}

// BrokerOptions builds the msglog options described by c. client is only
// used by the redis error sink and may be nil otherwise.
func (c *Config) BrokerOptions(logger *zap.Logger, client redis.Cmdable) ([]msglog.Option, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []msglog.Option{
		msglog.WithLogger(util.NewZapLogger(logger)),
		msglog.WithIdleWait(c.IdleWaitMin, c.IdleWaitMax),
	}

	switch c.ErrorSink {
	case SinkLog:
		limiter := rate.NewLimiter(rate.Limit(c.ErrorLogRate), c.ErrorLogBurst)
		opts = append(opts, msglog.WithErrorSink(errsink.NewLogSink(logger, limiter)))
	case SinkRedis:
		if client == nil {
			return nil, fmt.Errorf("%w: redis error sink needs a client", ErrInvalidConfig)
		}
		sink, err := errsink.NewRedisSink(client, c.ErrorSinkKey,
			errsink.WithMaxLen(c.ErrorSinkMaxLen),
			errsink.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, msglog.WithErrorSink(sink))
	}
	return opts, nil
}

// RedisClient returns a client for RedisAddr, or nil when it is unset.
func (c *Config) RedisClient() *redis.Client {
	if c.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: c.RedisAddr})
}

func (m Metrics) ExporterOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithServiceName(m.ServiceName),
		metrics.WithEnvironment(m.Environment),
		metrics.WithOTLPEndpoint(m.HTTPEndpoint),
		metrics.WithOTLPGRPCEndpoint(m.GRPCEndpoint),
		metrics.WithExportInterval(m.ExportInterval),
	}
}
