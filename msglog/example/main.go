package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/infigaming-com/go-msglog/config"
	"github.com/infigaming-com/go-msglog/msglog"
	"github.com/infigaming-com/go-msglog/observability/metrics"
	"github.com/infigaming-com/go-msglog/util"
)

const topic = "ticks"

type Tick struct {
	N  int       `json:"n"`
	At time.Time `json:"at"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	lg, cleanup := util.NewLogger(level)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("example failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	var client redis.Cmdable
	if rc := cfg.RedisClient(); rc != nil {
		defer rc.Close()
		client = rc
	}

	opts, err := cfg.BrokerOptions(lg, client)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	hooks := []msglog.Hooks{metrics.NewPrometheus(reg).Hooks()}

	if cfg.Metrics.Enabled {
		exporter, err := metrics.NewMetricExporter(cfg.Metrics.ExporterOptions()...)
		if err != nil {
			return fmt.Errorf("metric exporter: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := exporter.Close(closeCtx); err != nil {
				lg.Warn("close metric exporter", zap.Error(err))
			}
		}()
		otelHooks, err := metrics.NewOtelHooks(exporter.Meter())
		if err != nil {
			return err
		}
		hooks = append(hooks, otelHooks)
	}
	opts = append(opts, msglog.WithHooks(msglog.ChainHooks(hooks...)))

	if addr := cfg.Metrics.PrometheusAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	broker := msglog.New(opts...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := broker.Close(closeCtx); err != nil {
			lg.Warn("close broker", zap.Error(err))
		}
	}()

	_, err = broker.Subscribe(topic, msglog.ConsumerFunc(func(ctx context.Context, msg msglog.Message) error {
		var t Tick
		if err := msg.Decode(ctx, &t); err != nil {
			return err
		}
		if t.N%5 == 0 {
			return fmt.Errorf("tick %d rejected", t.N)
		}
		lg.Info("tick", zap.Int("n", t.N), zap.Uint64("sequence", msg.Sequence()))
		return nil
	}))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if _, err := broker.PublishValue(ctx, topic, Tick{N: n, At: now}); err != nil {
				return err
			}
		}
	}
}
