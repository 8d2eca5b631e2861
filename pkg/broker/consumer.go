package broker

import (
	"context"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Handler processes one message received on topic.
type Handler func(topic string, payload []byte) error

// Consumer subscribes a handler to a set of topics.
type Consumer struct {
	client  mqtt.Client
	topics  []string
	qos     byte
	handler Handler
	logger  *log.Logger
}

func NewConsumer(client mqtt.Client, topics []string, qos byte, handler Handler, logger *log.Logger) *Consumer {
	if logger == nil {
		logger = log.Default()
	}
	return &Consumer{client: client, topics: topics, qos: qos, handler: handler, logger: logger}
}

// Consume subscribes every topic and blocks until ctx is done, then unsubscribes.
// A failed subscription is returned before blocking.
func (c *Consumer) Consume(ctx context.Context) error {
	for _, topic := range c.topics {
		topic := topic
		token := c.client.Subscribe(topic, c.qos, func(_ mqtt.Client, msg mqtt.Message) {
			if err := c.handler(msg.Topic(), msg.Payload()); err != nil {
				c.logger.Printf("broker: handling message on %s: %v", msg.Topic(), err)
			}
		})
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("broker: subscribe %s: %w", topic, token.Error())
		}
		c.logger.Printf("broker: subscribed to %s (qos %d)", topic, c.qos)
	}

	<-ctx.Done()

	if c.client.IsConnected() {
		c.client.Unsubscribe(c.topics...).Wait()
	}
	return nil
}
