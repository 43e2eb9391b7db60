package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/ambient-light/internal/domain"
)

const (
	// defaults
	DefaultClientID   = "als-client"
	DefaultStateTopic = "als/lux"
	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	unitLux                = "lx"
	deviceClassIlluminance = "illuminance"
	stateClassMeasurement  = "measurement"
	valueTemplateAverage   = "{{ value_json.average }}"

	disconnectQuiesceMs = 250
)

// Config selects the broker and topics
type Config struct {
	Server         string
	Username       string
	Password       string
	ClientID       string
	StateTopic     string
	DiscoveryTopic string
	DiscoveryName  string
}

// Publisher sends readings to an MQTT broker
type Publisher struct {
	client     mqtt.Client
	stateTopic string
}

// New connects to the broker and publishes the discovery payload when configured
func New(cfg Config) (*Publisher, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return newPublisher(client, cfg), nil
}

func newPublisher(client mqtt.Client, cfg Config) *Publisher {
	p := &Publisher{client: client, stateTopic: cfg.StateTopic}
	if p.stateTopic == "" {
		p.stateTopic = DefaultStateTopic
	}

	// Home Assistant discovery is retained so late subscribers still see it
	if cfg.DiscoveryTopic != "" {
		payload := discoveryPayload(cfg, p.stateTopic)
		if err := publishJSON(client, cfg.DiscoveryTopic, true, payload); err != nil {
			log.Warn().Err(err).Str("topic", cfg.DiscoveryTopic).Msg("mqtt discovery publish error")
		}
	}
	return p
}

// Publish sends one reading as JSON to the state topic
func (p *Publisher) Publish(ctx context.Context, r *domain.LightReading) error {
	if p.client == nil {
		return fmt.Errorf("mqtt client not connected")
	}
	payload := map[string]interface{}{
		"lux":       r.Lux,
		"average":   r.Average,
		"category":  r.LightCategory(),
		"timestamp": r.Timestamp.UTC().Format(time.RFC3339),
	}
	return publishJSON(p.client, p.stateTopic, false, payload)
}

func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(disconnectQuiesceMs)
		p.client = nil
	}
	return nil
}

func discoveryPayload(cfg Config, stateTopic string) map[string]interface{} {
	name := cfg.DiscoveryName
	if name == "" {
		name = fmt.Sprintf("Ambient Light %s", cfg.ClientID)
	}
	payload := map[string]interface{}{
		keyName:                name,
		keyStateTopic:          stateTopic,
		keyUnitOfMeasurement:   unitLux,
		keyDeviceClass:         deviceClassIlluminance,
		keyStateClass:          stateClassMeasurement,
		keyValueTemplate:       valueTemplateAverage,
		keyJSONAttributesTopic: stateTopic,
	}
	if cfg.ClientID != "" {
		payload[keyUniqueID] = cfg.ClientID + "_lux"
	}
	return payload
}

func publishJSON(client mqtt.Client, topic string, retained bool, payload map[string]interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
