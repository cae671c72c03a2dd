package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRegistry(t *testing.T) {
	reg, _ := setupRegistryWithData(t)

	promRegistry, err := NewPrometheusRegistry(reg, "smcp")
	require.NoError(t, err)

	families, err := promRegistry.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		if len(family.GetMetric()) == 0 {
			continue
		}
		gauge := family.GetMetric()[0].GetGauge()
		if gauge != nil {
			values[family.GetName()] = gauge.GetValue()
		}
	}

	assert.Equal(t, 2.0, values["smcp_datagrams_accepted"])
	assert.Equal(t, 8.0, values["smcp_replay_nonces"])
	assert.Equal(t, 150.0, values["smcp_receive_time_avg_ns"])
	assert.NotContains(t, values, "smcp_bad_metric", "non-numeric values are skipped")
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"datagrams_accepted": "datagrams_accepted",
		"Replay-Nonces":      "replay_nonces",
		"a.b/c":              "a_b_c",
	}
	for input, want := range tests {
		assert.Equal(t, want, sanitizeName(input))
	}
}
