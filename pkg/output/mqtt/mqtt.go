package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/convert"
	"github.com/itohio/adcmon/pkg/output"
)

const (
	disconnectQuiesceMs = 250

	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyDeviceClass         = "device_class"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	stateClassMeasurement  = "measurement"
)

// State is the JSON document published for every reading.
type State struct {
	Timestamp            time.Time `json:"timestamp"`
	PotentiometerCounts  uint16    `json:"potentiometer_counts"`
	PotentiometerVoltage float64   `json:"potentiometer_voltage"`
	TemperatureCounts    uint16    `json:"temperature_counts"`
	TemperatureVoltage   float64   `json:"temperature_voltage"`
	TemperatureC         float64   `json:"temperature_c"`
	TemperatureF         float64   `json:"temperature_f"`
	InternalVRefCounts   uint16    `json:"internal_vref_counts"`
	InternalVRefVoltage  float64   `json:"internal_vref_voltage"`
}

// NewState builds the state document of a reading.
func NewState(r convert.Reading) State {
	return State{
		Timestamp:            r.Timestamp,
		PotentiometerCounts:  r.Potentiometer,
		PotentiometerVoltage: r.PotentiometerVoltage,
		TemperatureCounts:    r.Temperature,
		TemperatureVoltage:   r.TemperatureVoltage,
		TemperatureC:         r.TemperatureC,
		TemperatureF:         r.TemperatureF,
		InternalVRefCounts:   r.InternalVRef,
		InternalVRefVoltage:  r.InternalVRefVoltage,
	}
}

// sensor describes one derived value for Home Assistant discovery.
type sensor struct {
	key         string
	name        string
	unit        string
	deviceClass string
}

var sensors = []sensor{
	{"potentiometer_voltage", "Potentiometer", "V", "voltage"},
	{"temperature_voltage", "Temperature Sensor", "V", "voltage"},
	{"temperature_c", "Temperature", "°C", "temperature"},
	{"temperature_f", "Temperature F", "°F", "temperature"},
	{"internal_vref_voltage", "Internal VRef", "V", "voltage"},
}

var _ output.Output = (*Publisher)(nil)

// Publisher publishes readings to an MQTT broker.
type Publisher struct {
	cfg    config.MQTTConfig
	client mqtt.Client
}

// New creates a publisher. The broker connection is made in Start.
func New(cfg config.MQTTConfig) *Publisher {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	return &Publisher{cfg: cfg, client: mqtt.NewClient(opts)}
}

// Start connects to the broker and publishes retained discovery documents
// when a discovery topic is configured.
func (p *Publisher) Start() error {
	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	if p.cfg.DiscoveryTopic == "" {
		return nil
	}
	for _, s := range sensors {
		topic := discoveryTopic(p.cfg.DiscoveryTopic, s.key)
		if err := p.publishJSON(topic, true, discoveryPayload(p.cfg, s)); err != nil {
			log.Printf("mqtt discovery publish error: %v", err)
		}
	}
	return nil
}

// Publish sends the state document of r.
func (p *Publisher) Publish(r convert.Reading) error {
	return p.publishJSON(p.cfg.StateTopic, false, NewState(r))
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiesceMs)
	}
	return nil
}

func (p *Publisher) publishJSON(topic string, retained bool, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mqtt marshal: %w", err)
	}
	token := p.client.Publish(topic, 0, retained, b)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// discoveryTopic expands base with the sensor key, e.g.
// homeassistant/sensor/adcmon_%s/config. Without a formatter the key is
// appended as the last topic level.
func discoveryTopic(base, key string) string {
	if strings.Contains(base, "%s") {
		return fmt.Sprintf(base, key)
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}

func discoveryPayload(cfg config.MQTTConfig, s sensor) map[string]any {
	return map[string]any{
		keyName:                fmt.Sprintf("%s %s", cfg.ClientID, s.name),
		keyStateTopic:          cfg.StateTopic,
		keyUnitOfMeasurement:   s.unit,
		keyDeviceClass:         s.deviceClass,
		keyStateClass:          stateClassMeasurement,
		keyValueTemplate:       fmt.Sprintf("{{ value_json.%s }}", s.key),
		keyJSONAttributesTopic: cfg.StateTopic,
		keyUniqueID:            fmt.Sprintf("%s_%s", cfg.ClientID, s.key),
	}
}
