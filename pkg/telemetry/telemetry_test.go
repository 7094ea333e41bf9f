package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

func testGeometry() protocol.GeometryData {
	cfg := vision.DefaultConfig()
	return protocol.NewGeometryData(cfg, vision.ComputeROI(cfg.Height, cfg.Rows, cfg.RowSpacing))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(DefaultConfig(), testGeometry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func getJSON(t *testing.T, s *Server, path string, v interface{}) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("GET %s: %v (%s)", path, err, body)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		values   []float64
		wantN    int
		wantMean float64
		wantSD   float64
	}{
		{"empty", 3, nil, 0, 0, 0},
		{"single", 3, []float64{7}, 1, 7, 0},
		{"pair", 3, []float64{-10, 10}, 2, 0, math.Sqrt(200)},
		{"wraps", 3, []float64{100, 1, 2, 3}, 3, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWindow(tt.size)
			for _, v := range tt.values {
				w.add(v)
			}
			got := w.summary()
			if got.Window != tt.wantN {
				t.Errorf("Window = %d, want %d", got.Window, tt.wantN)
			}
			if math.Abs(got.Mean-tt.wantMean) > 1e-9 {
				t.Errorf("Mean = %v, want %v", got.Mean, tt.wantMean)
			}
			if math.Abs(got.StdDev-tt.wantSD) > 1e-9 {
				t.Errorf("StdDev = %v, want %v", got.StdDev, tt.wantSD)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	cfg := Config{Enabled: true, StatsWindow: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error")
	}
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	var got map[string]interface{}
	getJSON(t, s, "/api/health", &got)
	if got["status"] != "ok" {
		t.Errorf("status = %v, want ok", got["status"])
	}
	if got["session_id"] != s.SessionID() || s.SessionID() == "" {
		t.Errorf("session_id = %v, want %s", got["session_id"], s.SessionID())
	}
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t)

	s.Publish(protocol.CycleData{Seq: 1, Found: true, Error: 30, Message: "E30"})
	s.Publish(protocol.CycleData{Seq: 2, Found: true, Error: 10, Message: "E10"})
	s.Publish(protocol.CycleData{Seq: 3, Message: "S"})
	s.FrameError()

	var got protocol.StatusData
	getJSON(t, s, "/api/status", &got)

	if got.Cycles != 3 || got.Stops != 1 || got.FrameErrors != 1 {
		t.Errorf("cycles=%d stops=%d frame_errors=%d, want 3/1/1", got.Cycles, got.Stops, got.FrameErrors)
	}
	if got.LastMessage != "S" {
		t.Errorf("LastMessage = %q, want S", got.LastMessage)
	}
	if got.LastError != nil {
		t.Errorf("LastError = %v, want nil after a stop", *got.LastError)
	}
	if got.Stats.Window != 2 || got.Stats.Mean != 20 {
		t.Errorf("stats = %+v, want window 2 mean 20", got.Stats)
	}
}

func TestServer_Geometry(t *testing.T) {
	s := newTestServer(t)

	var got protocol.GeometryData
	getJSON(t, s, "/api/geometry", &got)
	if got.YStart != 240 || got.YEnd != 390 || len(got.Strips) != 5 {
		t.Errorf("geometry = %+v", got)
	}
}

func TestServer_WebsocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest("GET", "/ws/telemetry", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 426 {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

func TestServer_Stream(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()
	defer func() {
		cancel()
		<-served
	}()

	url := "ws://" + ln.Addr().String() + "/ws/telemetry"
	var ws *websocket.Conn
	for i := 0; i < 50; i++ {
		ws, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() *protocol.Message {
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			t.Fatal(err)
		}
		return msg
	}

	if msg := read(); msg.Type != protocol.TypeHello {
		t.Fatalf("first message type = %s, want hello", msg.Type)
	}

	s.Publish(protocol.CycleData{Seq: 9, Found: true, Error: -20, Message: "E-20"})

	msg := read()
	if msg.Type != protocol.TypeCycle {
		t.Fatalf("type = %s, want cycle", msg.Type)
	}
	var cycle protocol.CycleData
	if err := msg.ParseData(&cycle); err != nil {
		t.Fatal(err)
	}
	if cycle.Seq != 9 || cycle.Message != "E-20" {
		t.Errorf("cycle = %+v", cycle)
	}
}
