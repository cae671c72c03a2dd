package beats

import (
	"context"
	"net"
	"smcp/internal/global"
	"testing"
	"time"

	lumberserver "github.com/elastic/go-lumber/server/v2"
)

func testEntry() global.Transcript {
	return global.Transcript{
		Timestamp: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Session:   "lobby",
		Endpoint:  "239.1.2.3:5000",
		Kind:      "message",
		Username:  "alice",
		Address:   "10.0.0.1",
		Port:      5000,
		Text:      "hello",
	}
}

func TestDocumentFields(t *testing.T) {
	doc := Document(testEntry())

	if doc["message"] != "hello" {
		t.Errorf("message=%v want hello", doc["message"])
	}
	event := doc["event"].(map[string]interface{})
	if event["action"] != "message" {
		t.Errorf("event.action=%v want message", event["action"])
	}
	source := doc["source"].(map[string]interface{})
	if source["ip"] != "10.0.0.1" || source["port"] != 5000 {
		t.Errorf("source=%v", source)
	}
	smcp := doc["smcp"].(map[string]interface{})
	if smcp["session"] != "lobby" {
		t.Errorf("smcp.session=%v want lobby", smcp["session"])
	}
}

func TestNewOutputEmptyAddress(t *testing.T) {
	module, err := NewOutput(nil, "")
	if err != nil || module != nil {
		t.Fatalf("expected nil module and error, got %v %v", module, err)
	}
	if n, err := module.Write(context.Background(), testEntry()); n != 0 || err != nil {
		t.Fatalf("nil module write returned %d %v", n, err)
	}
}

func TestWriteToBeatsServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	server, err := lumberserver.NewWithListener(listener)
	if err != nil {
		t.Fatalf("beats server error: %v", err)
	}
	defer server.Close()

	received := make(chan []interface{}, 1)
	go func() {
		batch := <-server.ReceiveChan()
		if batch == nil {
			return
		}
		batch.ACK()
		received <- batch.Events
	}()

	module, err := NewOutput([]string{global.NSChat}, listener.Addr().String())
	if err != nil {
		t.Fatalf("NewOutput error: %v", err)
	}
	defer module.Shutdown()

	sent, err := module.Write(context.Background(), testEntry())
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent=%d want 1", sent)
	}

	select {
	case events := <-received:
		if len(events) != 1 {
			t.Fatalf("server got %d events want 1", len(events))
		}
		doc, ok := events[0].(map[string]interface{})
		if !ok {
			t.Fatalf("event type %T", events[0])
		}
		if doc["message"] != "hello" {
			t.Errorf("message=%v want hello", doc["message"])
		}
	case <-time.After(5 * time.Second):
		t.Fatal("beats server did not receive the event")
	}

	collection := module.CollectMetrics(time.Second)
	if collection[0].Value.Raw.(uint64) != 1 {
		t.Errorf("events_sent=%v want 1", collection[0].Value.Raw)
	}
}
