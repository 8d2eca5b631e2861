// Package broker wraps the MQTT client used by the feed and the simulator.
package broker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string // random when empty

	MaxRetries     int
	MaxElapsedTime time.Duration

	// Will is published by the broker if the client drops without disconnecting.
	Will *Will

	Logger *log.Logger
}

type Will struct {
	Topic   string
	Payload string
	QoS     byte
	Retain  bool
}

func (c Config) addr() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}

// Connect dials the broker with exponential backoff and disconnects when ctx is done.
func Connect(ctx context.Context, cfg Config) (mqtt.Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "lumicert-" + uuid.NewString()[:8]
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = 10 * time.Second
	}
	logger := cfg.Logger

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.addr())
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	if cfg.Will != nil {
		opts.SetWill(cfg.Will.Topic, cfg.Will.Payload, cfg.Will.QoS, cfg.Will.Retain)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Printf("broker: connection lost: %v", err)
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.MaxElapsedTime

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logger.Printf("broker: connect %s failed: %v", cfg.addr(), token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.MaxRetries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("broker: connect %s: %w", cfg.addr(), err)
	}
	logger.Printf("broker: connected to %s as %s", cfg.addr(), cfg.ClientID)

	go func() {
		<-ctx.Done()
		Close(client)
		logger.Println("broker: connection closed")
	}()
	return client, nil
}

func Close(client mqtt.Client) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
}
