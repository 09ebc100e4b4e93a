package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/itohio/adcmon/pkg/config"
	"github.com/itohio/adcmon/pkg/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	ts := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	conv := convert.NewConverter(config.Default())
	r := conv.Convert(convert.Raw{Timestamp: ts, Potentiometer: 2048, Temperature: 1500, InternalVRef: 4000})

	b, err := json.Marshal(NewState(r))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "2026-10-19T12:00:00Z", got["timestamp"])
	assert.Equal(t, float64(2048), got["potentiometer_counts"])
	assert.Equal(t, float64(1500), got["temperature_counts"])
	assert.Equal(t, float64(4000), got["internal_vref_counts"])
	assert.InDelta(t, -32.61, got["temperature_c"], 0.005)
	assert.InDelta(t, -26.70, got["temperature_f"], 0.01)
}

func TestDiscoveryPayload(t *testing.T) {
	cfg := config.MQTTConfig{ClientID: "bench", StateTopic: "bench/state"}

	p := discoveryPayload(cfg, sensors[2])
	assert.Equal(t, "bench Temperature", p[keyName])
	assert.Equal(t, "bench/state", p[keyStateTopic])
	assert.Equal(t, "°C", p[keyUnitOfMeasurement])
	assert.Equal(t, "temperature", p[keyDeviceClass])
	assert.Equal(t, "{{ value_json.temperature_c }}", p[keyValueTemplate])
	assert.Equal(t, "bench_temperature_c", p[keyUniqueID])
}

func TestDiscoveryTemplatesMatchState(t *testing.T) {
	b, err := json.Marshal(State{})
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(b, &keys))

	for _, s := range sensors {
		assert.Contains(t, keys, s.key, "sensor %s has no state field", s.name)
	}
}

func TestDiscoveryTopic(t *testing.T) {
	assert.Equal(t, "homeassistant/sensor/adcmon_temperature_c/config",
		discoveryTopic("homeassistant/sensor/adcmon_%s/config", "temperature_c"))
	assert.Equal(t, "adcmon/discovery/temperature_c", discoveryTopic("adcmon/discovery/", "temperature_c"))
}

func TestNew_DoesNotConnect(t *testing.T) {
	p := New(config.MQTTConfig{Server: "tcp://127.0.0.1:1", ClientID: "test", StateTopic: "t"})
	require.NotNil(t, p.client)
	assert.False(t, p.client.IsConnected())
	assert.NoError(t, p.Close())
}
