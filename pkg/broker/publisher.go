package broker

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
	retain bool
}

func NewPublisher(client mqtt.Client, topic string, qos byte, retain bool) *Publisher {
	return &Publisher{client: client, topic: topic, qos: qos, retain: retain}
}

func (p *Publisher) Topic() string { return p.topic }

func (p *Publisher) Publish(payload []byte) error {
	token := p.client.Publish(p.topic, p.qos, p.retain, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("broker: publish %s: %w", p.topic, err)
	}
	return nil
}

// PublishJSON marshals v and publishes it.
func (p *Publisher) PublishJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("broker: encode %s payload: %w", p.topic, err)
	}
	return p.Publish(b)
}
