package metrics

import (
	"testing"
	"time"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		input    Metric
		expected JMetric
	}{
		{
			name: "all fields",
			input: Metric{
				Name:        "datagrams_accepted",
				Description: "datagrams delivered to the application",
				Namespace:   []string{"Chat", "Channel"},
				Value:       MetricValue{Raw: uint64(45), Unit: "count", Interval: time.Second},
				Type:        Counter,
				Timestamp:   time.Date(2001, time.January, 1, 1, 1, 1, 1, time.UTC),
			},
			expected: JMetric{
				Name:        "datagrams_accepted",
				Description: "datagrams delivered to the application",
				Namespace:   "Chat/Channel",
				Value:       JMetricValue{Raw: "45", Unit: "count", Interval: "1s"},
				Type:        "counter",
				Timestamp:   "2001-01-01T01:01:01.000000001Z",
			},
		},
		{
			name:  "discovery entry without timestamp",
			input: Metric{Name: "replay_nonces", Type: Gauge},
			expected: JMetric{
				Name:  "replay_nonces",
				Type:  "gauge",
				Value: JMetricValue{Raw: "<nil>", Interval: "0s"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Convert(); got != tt.expected {
				t.Fatalf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestValueFloat(t *testing.T) {
	tests := []struct {
		raw       any
		want      float64
		expectErr bool
	}{
		{uint64(3), 3, false},
		{int64(-2), -2, false},
		{4, 4, false},
		{1.5, 1.5, false},
		{"2.25", 2.25, false},
		{"nope", 0, true},
		{struct{}{}, 0, true},
	}
	for _, tt := range tests {
		got, err := MetricValue{Raw: tt.raw}.Float()
		if (err != nil) != tt.expectErr {
			t.Fatalf("Float(%v) error = %v", tt.raw, err)
		}
		if err == nil && got != tt.want {
			t.Fatalf("Float(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
