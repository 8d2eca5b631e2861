// Package telemetry is the typed client of the LumiCert backend REST API.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// Breaker names, one per upstream category.
const (
	BreakerSectores       = "sectores"
	BreakerLuminarias     = "luminarias"
	BreakerMediciones     = "mediciones"
	BreakerLuz            = "luz"
	BreakerNotificaciones = "notificaciones"
	BreakerReportes       = "reportes"
	BreakerConsumo        = "consumo"
)

var breakerNames = []string{
	BreakerSectores, BreakerLuminarias, BreakerMediciones, BreakerLuz,
	BreakerNotificaciones, BreakerReportes, BreakerConsumo,
}

type Config struct {
	BaseURL  string
	// LightURL, when set, serves the ambient light reading instead of BaseURL (feed service).
	LightURL string
	Timeout  time.Duration

	BreakerFailures int
	BreakerOpenFor  time.Duration
	BreakerInterval time.Duration

	// OnBreakerChange is invoked on every breaker transition (metrics, logs).
	OnBreakerChange func(name string, from, to gobreaker.State)

	Logger *log.Logger
}

// Client wraps resty with one circuit breaker per category.
type Client struct {
	http     *resty.Client
	lightURL string
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *log.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFailures < 1 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 10 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	c := &Client{
		http:     rc,
		lightURL: strings.TrimRight(strings.TrimSpace(cfg.LightURL), "/"),
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(breakerNames)),
		logger:   cfg.Logger,
	}
	for _, name := range breakerNames {
		c.breakers[name] = mkCB(name, cfg)
	}
	return c
}

func mkCB(name string, cfg Config) *gobreaker.CircuitBreaker {
	fails := uint32(cfg.BreakerFailures)
	logger := cfg.Logger
	onChange := cfg.OnBreakerChange
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerOpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
		// 4xx rejections and fetches cancelled by a failed sibling are not outages
		IsSuccessful: func(err error) bool {
			var te *TransportError
			return err == nil || errors.Is(err, context.Canceled) || (errors.As(err, &te) && te.Rejected())
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("telemetry: breaker %s %s -> %s", name, from, to)
			if onChange != nil {
				onChange(name, from, to)
			}
		},
	})
}

// BreakerStates returns the current state of every breaker.
func (c *Client) BreakerStates() map[string]gobreaker.State {
	out := make(map[string]gobreaker.State, len(c.breakers))
	for name, cb := range c.breakers {
		out[name] = cb.State()
	}
	return out
}

// envelope is the response wrapper used by every backend endpoint.
type envelope[T any] struct {
	Success *bool  `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Total   int    `json:"total"`
}

// call performs one request through the category breaker and unwraps the envelope.
func call[T any](ctx context.Context, c *Client, breaker, op, method, path string, body any) (T, error) {
	var zero T
	cb := c.breakers[breaker]

	res, err := cb.Execute(func() (interface{}, error) {
		req := c.http.R().SetContext(ctx)
		if body != nil {
			req.SetBody(body)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
		raw := resp.Body()
		if !resp.IsSuccess() {
			return nil, &TransportError{Op: op, Status: resp.StatusCode(), Message: errorMessage(raw)}
		}

		var env envelope[T]
		if len(strings.TrimSpace(string(raw))) > 0 {
			if err := json.Unmarshal(raw, &env); err != nil {
				return nil, &TransportError{Op: op, Status: resp.StatusCode(), Err: err}
			}
		}
		if env.Success != nil && !*env.Success {
			msg := firstNonEmpty(env.Error, env.Message, "respuesta sin éxito")
			return nil, &TransportError{Op: op, Status: http.StatusUnprocessableEntity, Message: msg}
		}
		return env.Data, nil
	})
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Op: op, Err: err}
		}
		return zero, err
	}
	return res.(T), nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return firstNonEmpty(body.Error, body.Message)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
