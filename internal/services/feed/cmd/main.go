package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/lumicert/internal/services/feed"
	"github.com/LeonardoBeccarini/lumicert/pkg/broker"
	"github.com/LeonardoBeccarini/lumicert/pkg/dedup"
)

var (
	errMQTTDown   = errors.New("mqtt connection closed")
	errInfluxDown = errors.New("influx not ready")
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("feed: .env: %v", err)
	}
	logger := log.New(os.Stdout, "feed: ", log.LstdFlags|log.Lmsgprefix)

	cfg := struct {
		Broker broker.Config
		Topic  string
		QoS    int

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string
		BatchSize    int
		FlushEvery   time.Duration

		FrameInterval time.Duration
		Timezone      string
		HTTPPort      int
	}{
		Broker: broker.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", ""),
			Password: os.Getenv("MQTT_PASSWORD"),
			ClientID: envStr("MQTT_CLIENT_ID", ""),
			Logger:   logger,
		},
		Topic: envStr("MQTT_TOPIC", "lumicert/luminarias"),
		QoS:   envInt("MQTT_QOS", 1),

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "lumicert"),
		InfluxBucket: envStr("INFLUX_BUCKET", "telemetria"),
		BatchSize:    envInt("WRITE_BATCH_SIZE", 20),
		FlushEvery:   envDuration("WRITE_FLUSH_INTERVAL", time.Second),

		FrameInterval: envDuration("FRAME_INTERVAL", 5*time.Second),
		Timezone:      envStr("TZ_FRAMES", "Local"),
		HTTPPort:      envInt("HTTP_PORT", 8081),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Printf("unknown timezone %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := feed.NewMetrics(reg)

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushEvery.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writer := feed.NewWriter(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket), logger, func(error) {
		metrics.WriteErrors.Inc()
	})
	defer writer.Flush()

	// === MQTT ===
	client, err := broker.Connect(ctx, cfg.Broker)
	if err != nil {
		logger.Fatalf("mqtt: %v", err)
	}
	defer broker.Close(client)

	svc := feed.NewService(feed.Config{
		Interval: cfg.FrameInterval,
		Location: loc,
		Logger:   logger,
	}, dedup.New(10*time.Minute, 20000), feed.NewCache(), writer, metrics)

	consumer := broker.NewConsumer(client, []string{cfg.Topic}, byte(cfg.QoS), svc.Handle, logger)
	go func() {
		if err := consumer.Consume(ctx); err != nil {
			logger.Printf("consumer stopped: %v", err)
			stop()
		}
	}()

	// === HTTP ===
	health := &feed.Health{
		Deps: []feed.Dependency{
			{Name: "mqtt", Check: func(context.Context) error {
				if !client.IsConnectionOpen() {
					return errMQTTDown
				}
				return nil
			}},
			{Name: "influx", Check: func(ctx context.Context) error {
				ok, err := influx.Ping(ctx)
				if err == nil && !ok {
					err = errInfluxDown
				}
				return err
			}},
		},
		Writer:     writer,
		WriteGrace: 2 * time.Second,
		Timeout:    time.Second,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", health.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.Readyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	feed.Routes(r, svc.Cache())

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, r)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Printf("HTTP listening on :%d, topic %s", cfg.HTTPPort, cfg.Topic)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down...")

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hs.Shutdown(shCtx)
}
