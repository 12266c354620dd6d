// Package hub implements the broadcast service: a websocket subscriber
// registry fed by a timer-driven metrics loop plus externally pushed job
// updates.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	"spark-command-backend/internal/parser"
)

// SnapshotFunc pulls the local node's metrics snapshot. Injected so the
// broadcast loop can be exercised without a live executor.
type SnapshotFunc func(ctx context.Context) (*models.NodeOverview, error)

const defaultInterval = 5 * time.Second

// Hub maintains the subscriber set and pushes broadcast messages. All
// subscriber-set mutations flow through the run loop's channels, so the
// timer-driven push never races with arrivals or departures.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.BroadcastMessage
	done       chan struct{}

	snapshot    SnapshotFunc
	interval    time.Duration
	tempWarning int
	logger      *zap.Logger
}

func NewHub(snapshot SnapshotFunc, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan models.BroadcastMessage, 64),
		done:        make(chan struct{}),
		snapshot:    snapshot,
		interval:    defaultInterval,
		tempWarning: parser.GPUTempWarning,
		logger:      logger,
	}
}

// SetInterval overrides the broadcast cadence. Call before Run.
func (h *Hub) SetInterval(d time.Duration) {
	h.interval = d
}

// SetTempWarning overrides the GPU temperature alert threshold in Celsius.
func (h *Hub) SetTempWarning(deg int) {
	h.tempWarning = deg
}

// Run drives the hub until ctx is cancelled. Subscribers receive one
// acknowledgement on arrival, then snapshot messages every interval.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Unblocks pumps parked on register/unregister once the
			// run loop stops draining them.
			close(h.done)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			client.deliver(models.NewBroadcastMessage(models.MsgConnected, models.ConnectionAck{
				SubscriberID: client.ID,
				IntervalMS:   h.interval.Milliseconds(),
			}))
			h.logger.Info("subscriber connected", zap.String("subscriber", client.ID))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("subscriber disconnected", zap.String("subscriber", client.ID))
			}

		case message := <-h.broadcast:
			h.push(message)

		case <-ticker.C:
			h.tick(ctx)
		}
	}
}

// tick pulls one snapshot and fans the metric messages out.
func (h *Hub) tick(ctx context.Context) {
	if len(h.clients) == 0 {
		return
	}

	ov, err := h.snapshot(ctx)
	if err != nil || ov == nil {
		h.logger.Warn("metrics snapshot failed", zap.Error(err))
		return
	}

	h.push(models.NewBroadcastMessage(models.MsgGPUMetrics, ov.GPU))
	h.push(models.NewBroadcastMessage(models.MsgSystemMetrics, models.SystemMetrics{
		NodeID:  ov.NodeID,
		CPU:     ov.CPU,
		Memory:  ov.Memory,
		Storage: ov.Storage,
		System:  ov.System,
	}))

	if ov.GPU != nil && ov.GPU.Temperature > h.tempWarning {
		h.push(models.NewBroadcastMessage(models.MsgAlert, models.Alert{
			NodeID:    ov.NodeID,
			Severity:  "warning",
			Metric:    "gpu_temperature",
			Value:     float64(ov.GPU.Temperature),
			Threshold: float64(h.tempWarning),
			Message:   "GPU temperature above warning threshold",
		}))
	}
}

// push delivers one message to every subscriber that wants its kind. A
// subscriber whose buffer is full is treated as gone and dropped without
// affecting the rest.
func (h *Hub) push(message models.BroadcastMessage) {
	for client := range h.clients {
		if !client.wants(message.Type) {
			continue
		}
		if !client.deliver(message) {
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn("subscriber too slow, dropping", zap.String("subscriber", client.ID))
		}
	}
}

// Broadcast queues a message for every subscriber. Fire-and-forget; drops
// the message when the hub is saturated rather than blocking the caller.
func (h *Hub) Broadcast(message models.BroadcastMessage) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast queue full, message dropped", zap.String("type", message.Type))
	}
}

// PushJobUpdate lets external callers notify subscribers of a job lifecycle
// transition outside the broadcast timer.
func (h *Hub) PushJobUpdate(update models.JobUpdate) {
	h.Broadcast(models.NewBroadcastMessage(models.MsgJobUpdate, update))
}
