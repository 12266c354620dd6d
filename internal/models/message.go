package models

import "time"

// Broadcast message kinds pushed to websocket subscribers.
const (
	MsgConnected     = "connected"
	MsgGPUMetrics    = "gpu_metrics"
	MsgSystemMetrics = "system_metrics"
	MsgAlert         = "alert"
	MsgJobUpdate     = "job_update"
	MsgKeepalive     = "keepalive"
)

// BroadcastMessage is the envelope pushed to every subscriber. A fresh
// message is constructed per push, never reused.
type BroadcastMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewBroadcastMessage stamps an envelope with the current time.
func NewBroadcastMessage(kind string, payload any) BroadcastMessage {
	return BroadcastMessage{Type: kind, Timestamp: time.Now(), Payload: payload}
}

// ConnectionAck is the payload of the first message a subscriber receives.
type ConnectionAck struct {
	SubscriberID string `json:"subscriberId"`
	IntervalMS   int64  `json:"intervalMs"`
}

// Alert is pushed when a metric crosses its warning threshold.
type Alert struct {
	NodeID    string  `json:"nodeId"`
	Severity  string  `json:"severity"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

// JobUpdate notifies subscribers of a job lifecycle transition. It is pushed
// by external callers outside the broadcast timer.
type JobUpdate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	StartTime time.Time `json:"startTime,omitzero"`
	Duration  int64     `json:"duration,omitempty"`
}

// SubscriberMessage is what the service accepts from a subscriber: a
// keepalive or a subscription preference. Unknown types are ignored.
type SubscriberMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics,omitempty"`
}
