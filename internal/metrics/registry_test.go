package metrics

import (
	"testing"
	"time"
)

func TestRegistryAddRequiresSlice(t *testing.T) {
	reg := New()
	reg.Add(time.Unix(100, 0), []Metric{{Name: "orphan"}})
	if results := reg.Search("", nil, time.Time{}, time.Time{}); len(results) != 0 {
		t.Fatalf("metrics added without a time slice must be dropped, got %d", len(results))
	}
}

func TestRegistryPrune(t *testing.T) {
	reg, ts := setupRegistryWithData(t)

	reg.Prune(ts["ts3"].Add(30*time.Second), time.Minute)

	results := reg.Search("", nil, time.Time{}, time.Time{})
	if len(results) == 0 {
		t.Fatalf("expected metrics after prune, got none")
	}
	for _, m := range results {
		if m.Timestamp.Before(ts["ts3"]) {
			t.Fatalf("unexpected old metric timestamp: %v", m.Timestamp)
		}
	}
}

func TestRegistryLatest(t *testing.T) {
	reg, ts := setupRegistryWithData(t)

	latest := reg.Latest()
	byName := make(map[string]Metric)
	for _, m := range latest {
		byName[m.Name] = m
	}

	tests := []struct {
		name     string
		expectTS time.Time
		expectV  any
	}{
		{"datagrams_accepted", ts["ts3"], uint64(2)},
		{"replay_nonces", ts["ts2"], uint64(8)},
		{"receive_time_avg_ns", ts["ts2"], "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := byName[tt.name]
			if !ok {
				t.Fatalf("metric missing from latest")
			}
			if !m.Timestamp.Equal(tt.expectTS) || m.Value.Raw != tt.expectV {
				t.Fatalf("got %v at %v, want %v at %v", m.Value.Raw, m.Timestamp, tt.expectV, tt.expectTS)
			}
		})
	}
	if len(latest) != 4 {
		t.Fatalf("expected 4 distinct metrics, got %d", len(latest))
	}
}
