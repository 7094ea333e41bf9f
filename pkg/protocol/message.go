// Package protocol defines what go-linefollow puts on the wire.
//
// The serial link carries newline-terminated ASCII control messages (see
// Command). The telemetry websocket carries JSON envelopes (see Message)
// describing each control cycle.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of telemetry message
type MessageType string

const (
	TypeHello  MessageType = "hello"  // Sent once to each new client
	TypeCycle  MessageType = "cycle"  // One control cycle
	TypeStatus MessageType = "status" // Periodic status snapshot
)

// Message is the base wrapper for all telemetry messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// RowData is one detection row of a cycle.
type RowData struct {
	Index int  `json:"index"`
	Y     int  `json:"y"`
	X     int  `json:"x,omitempty"`
	Area  int  `json:"area,omitempty"`
	Found bool `json:"found"`
}

// CycleData describes one capture-detect-send cycle.
type CycleData struct {
	Seq       uint64    `json:"seq"`
	Rows      []RowData `json:"rows"`
	Found     bool      `json:"found"`
	Error     int       `json:"error"`
	Mean      int       `json:"mean"`
	Detected  int       `json:"detected"`
	Message   string    `json:"message"` // Control message without terminator
	LatencyMS float64   `json:"latency_ms"`
}

// StatsData summarises recent offsets.
type StatsData struct {
	Window int     `json:"window"` // Samples in the window
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// StatusData is the controller status exposed by the telemetry API.
type StatusData struct {
	SessionID   string    `json:"session_id"`
	StartedAt   time.Time `json:"started_at"`
	Cycles      uint64    `json:"cycles"`
	Stops       uint64    `json:"stops"`
	FrameErrors uint64    `json:"frame_errors"`
	LastMessage string    `json:"last_message,omitempty"`
	LastError   *int      `json:"last_error,omitempty"`
	Stats       StatsData `json:"stats"`
}

// StripData is the frame rows [Y0, Y1) of one detection row.
type StripData struct {
	Index int `json:"index"`
	Y0    int `json:"y0"`
	Y1    int `json:"y1"`
}

// GeometryData is the static detection geometry.
type GeometryData struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	YStart  int         `json:"y_start"`
	YEnd    int         `json:"y_end"`
	Rows    int         `json:"rows"`
	Spacing int         `json:"spacing"`
	Strips  []StripData `json:"strips"`
}
