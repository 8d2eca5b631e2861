package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/lumicert/internal/assignment"
	"github.com/LeonardoBeccarini/lumicert/internal/consumption"
	"github.com/LeonardoBeccarini/lumicert/internal/refresh"
	"github.com/LeonardoBeccarini/lumicert/internal/services/dashboard"
	"github.com/LeonardoBeccarini/lumicert/internal/telemetry"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dashboard: .env: %v", err)
	}
	cfg := loadConfig()
	logger := log.New(os.Stdout, "dashboard: ", log.LstdFlags|log.Lmsgprefix)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Printf("unknown timezone %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := dashboard.NewMetrics(reg)

	// one breaker per backend category
	client := telemetry.NewClient(telemetry.Config{
		BaseURL:         cfg.BackendURL,
		LightURL:        cfg.LightURL,
		Timeout:         time.Duration(cfg.TimeoutMs) * time.Millisecond,
		BreakerFailures: cfg.CBFails,
		BreakerOpenFor:  time.Duration(cfg.CBOpenMs) * time.Millisecond,
		BreakerInterval: time.Duration(cfg.CBIntervalMs) * time.Millisecond,
		OnBreakerChange: metrics.BreakerChanged,
		Logger:          logger,
	})

	editors := assignment.NewRegistry(client, cfg.EditorIdle)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "lumicert",
		Subsystem: "dashboard",
		Name:      "editors_open",
		Help:      "Open assignment editors.",
	}, func() float64 { return float64(editors.Len()) }))

	sessions := refresh.NewManager(ctx, client, refresh.Cadence{
		Medicion:       cfg.RefreshMedicion,
		Luz:            cfg.RefreshLuz,
		Notificaciones: cfg.RefreshNotificaciones,
		Reportes:       cfg.RefreshReportes,
		Luminaria:      cfg.RefreshMedicion,
	}, cfg.SessionIdle, refresh.Options{Metrics: refresh.NewMetrics(reg), Logger: logger})
	go sessions.Sweep(ctx, cfg.SessionIdle/2)

	var hourly dashboard.HourlySource
	if cfg.InfluxToken != "" {
		influx := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		defer influx.Close()
		hourly = consumption.NewInfluxHourly(influx.QueryAPI(cfg.InfluxOrg), cfg.InfluxBucket, cfg.MetricName, cfg.HourlyWindow, loc)
		logger.Printf("hourly profile from influx %s bucket=%s", cfg.InfluxURL, cfg.InfluxBucket)
	}

	d, err := dashboard.New(dashboard.Config{
		Timeout:  time.Duration(cfg.TimeoutMs) * time.Millisecond,
		Location: loc,
		Logger:   logger,
	}, client, editors, sessions, hourly, metrics)
	if err != nil {
		logger.Fatalf("live session: %v", err)
	}
	defer d.Close()

	// ---- gRPC health ----
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatalf("listen :%s: %v", cfg.GRPCPort, err)
	}
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	go dashboard.WatchReadiness(ctx, hs, d.Ready, 5*time.Second)
	go func() {
		logger.Printf("gRPC health on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Printf("gRPC serve error: %v", err)
		}
	}()

	// ---- HTTP ----
	r := mux.NewRouter()
	r.HandleFunc("/healthz", d.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", d.HandleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	d.Routes(r)

	hsrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           dashboard.Wrap(r, cfg.Origins, os.Stdout),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Printf("listening on :%s, backend %s", cfg.Port, cfg.BackendURL)
		if err := hsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down...")

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = hsrv.Shutdown(shCtx)
	grpcServer.GracefulStop()
}
