// Package mqtt publishes readings to an MQTT broker, optionally announcing
// the sensor through Home Assistant discovery.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/luki/pitemp/internal/config"
	"github.com/luki/pitemp/internal/sensor"
	"github.com/luki/pitemp/internal/temp"
)

const (
	clientIDPrefix    = "pitemp-"
	disconnectQuiesce = 250 // ms
	connectTimeout    = 10 * time.Second

	deviceClassTemperature = "temperature"
	stateClassMeasurement  = "measurement"
	valueTemplate          = "{{ value_json.temperature }}"
)

// State is the JSON document published for every reading.
type State struct {
	Raw         int64     `json:"raw"`
	Temperature float64   `json:"temperature"`
	Unit        string    `json:"unit"`
	Timestamp   time.Time `json:"timestamp"`
}

// Discovery is the Home Assistant MQTT discovery document.
type Discovery struct {
	Name                string `json:"name"`
	StateTopic          string `json:"state_topic"`
	UnitOfMeasurement   string `json:"unit_of_measurement"`
	DeviceClass         string `json:"device_class"`
	StateClass          string `json:"state_class"`
	ValueTemplate       string `json:"value_template"`
	JSONAttributesTopic string `json:"json_attributes_topic"`
	UniqueID            string `json:"unique_id,omitempty"`
}

// Publisher sends readings to one state topic.
type Publisher struct {
	client paho.Client
	topic  string
	log    *log.Entry
}

// ClientID returns the configured client id or a random pitemp-xxxxxxxx one.
func ClientID(cfg config.MQTTConfig) string {
	if cfg.ClientID != "" {
		return cfg.ClientID
	}
	return clientIDPrefix + uuid.NewString()[:8]
}

// New connects to the broker. When a discovery topic is configured a
// retained discovery document is published for label in unit.
func New(cfg config.MQTTConfig, label string, unit temp.Unit) (*Publisher, error) {
	clientID := ClientID(cfg)
	opts := paho.NewClientOptions().
		AddBroker(cfg.Server).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	p := &Publisher{
		client: client,
		topic:  cfg.Topic,
		log:    log.WithFields(log.Fields{"package": "mqtt", "broker": cfg.Server}),
	}

	if cfg.DiscoveryTopic != "" {
		d := NewDiscovery(label, cfg.Topic, clientID, unit)
		if err := p.publishJSON(cfg.DiscoveryTopic, true, d); err != nil {
			p.log.WithError(err).Warn("discovery publish failed")
		}
	}
	return p, nil
}

// NewDiscovery builds the discovery document for a temperature sensor.
func NewDiscovery(label, stateTopic, uniqueID string, unit temp.Unit) Discovery {
	return Discovery{
		Name:                label + " temperature",
		StateTopic:          stateTopic,
		UnitOfMeasurement:   unit.Symbol(),
		DeviceClass:         deviceClassTemperature,
		StateClass:          stateClassMeasurement,
		ValueTemplate:       valueTemplate,
		JSONAttributesTopic: stateTopic,
		UniqueID:            uniqueID,
	}
}

// NewState builds the state document for r.
func NewState(r sensor.Reading) State {
	return State{
		Raw:         r.Raw,
		Temperature: r.Value,
		Unit:        r.Unit.Letter(),
		Timestamp:   r.Time,
	}
}

// Record publishes r to the state topic.
func (p *Publisher) Record(r sensor.Reading) error {
	return p.publishJSON(p.topic, false, NewState(r))
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(disconnectQuiesce)
	}
	return nil
}

func (p *Publisher) publishJSON(topic string, retained bool, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := p.client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
