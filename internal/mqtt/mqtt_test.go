package mqtt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/pitemp/internal/config"
	"github.com/luki/pitemp/internal/sensor"
	"github.com/luki/pitemp/internal/temp"
)

func TestClientID(t *testing.T) {
	assert.Equal(t, "kitchen-pi", ClientID(config.MQTTConfig{ClientID: "kitchen-pi"}))

	id := ClientID(config.MQTTConfig{})
	assert.True(t, strings.HasPrefix(id, "pitemp-"), id)
	assert.Len(t, id, len("pitemp-")+8)
	assert.NotEqual(t, id, ClientID(config.MQTTConfig{}))
}

func TestStatePayload(t *testing.T) {
	ts := time.Date(2025, 9, 19, 14, 41, 54, 0, time.UTC)
	r := sensor.Reading{Source: "zone0", Raw: 52300, Value: 52.3, Unit: temp.Celsius, Time: ts}

	b, err := json.Marshal(NewState(r))
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":52300,"temperature":52.3,"unit":"C","timestamp":"2025-09-19T14:41:54Z"}`, string(b))
}

func TestDiscoveryPayload(t *testing.T) {
	d := NewDiscovery("CPU", "home/pi/temp", "pitemp-1234", temp.Fahrenheit)

	b, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "CPU temperature", got["name"])
	assert.Equal(t, "home/pi/temp", got["state_topic"])
	assert.Equal(t, "°F", got["unit_of_measurement"])
	assert.Equal(t, "temperature", got["device_class"])
	assert.Equal(t, "{{ value_json.temperature }}", got["value_template"])
	assert.Equal(t, "pitemp-1234", got["unique_id"])
}
