package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port      string
	GRPCPort  string
	TimeoutMs int
	Timezone  string

	BackendURL string // e.g. http://backend:3000
	LightURL   string // feed service, empty = backend
	Origins    []string

	CBFails      int
	CBOpenMs     int
	CBIntervalMs int

	// hourly profile from Influx, enabled by INFLUX_TOKEN
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
	MetricName   string
	HourlyWindow time.Duration

	RefreshMedicion       time.Duration
	RefreshLuz            time.Duration
	RefreshNotificaciones time.Duration
	RefreshReportes       time.Duration
	EditorIdle            time.Duration
	SessionIdle           time.Duration
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if p, err := time.ParseDuration(v); err == nil {
			return p
		}
	}
	return d
}

func getenvList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadConfig() Config {
	return Config{
		Port:      getenv("PORT", "5009"),
		GRPCPort:  getenv("GRPC_PORT", "50051"),
		TimeoutMs: getenvInt("TIMEOUT_MS", 3000),
		Timezone:  getenv("TZ_DASHBOARD", "Local"),

		BackendURL: getenv("BACKEND_URL", "http://localhost:3000"),
		LightURL:   getenv("LIGHT_URL", ""),
		Origins:    getenvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		CBFails:      getenvInt("CB_FAILS", 5),
		CBOpenMs:     getenvInt("CB_OPEN_MS", 10000),
		CBIntervalMs: getenvInt("CB_INTERVAL_MS", 0),

		InfluxURL:    getenv("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", "lumicert"),
		InfluxBucket: getenv("INFLUX_BUCKET", "telemetria"),
		MetricName:   getenv("METRIC_NAME", "medicion"),
		HourlyWindow: getenvDuration("HOURLY_WINDOW", 24*time.Hour),

		RefreshMedicion:       getenvDuration("REFRESH_MEDICION", 5*time.Second),
		RefreshLuz:            getenvDuration("REFRESH_LUZ", 5*time.Second),
		RefreshNotificaciones: getenvDuration("REFRESH_NOTIFICACIONES", 15*time.Second),
		RefreshReportes:       getenvDuration("REFRESH_REPORTES", 30*time.Second),
		EditorIdle:            getenvDuration("EDITOR_IDLE", 30*time.Minute),
		SessionIdle:           getenvDuration("SESSION_IDLE", 2*time.Minute),
	}
}
