package service

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	"spark-command-backend/pkg/utils"
)

// ErrUnknownNode is returned when an operation references a node id that
// was never registered. This is the only error class that escapes the
// service layer; everything else is captured in results.
var ErrUnknownNode = errors.New("unknown node")

// ErrLocalNode is returned for operations that are not valid on the local
// sentinel, such as deregistering it.
var ErrLocalNode = errors.New("local node is reserved")

// Registry holds per-node configuration and connection state. Exactly one
// ConnectionState exists per registered NodeConfig. The local sentinel is
// seeded at construction and cannot be removed.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]models.NodeConfig
	states  map[string]*models.ConnectionState
	locks   map[string]*sync.Mutex
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		configs: make(map[string]models.NodeConfig),
		states:  make(map[string]*models.ConnectionState),
		locks:   make(map[string]*sync.Mutex),
		logger:  logger,
	}
	r.configs[models.LocalNodeID] = models.NodeConfig{
		ID:   models.LocalNodeID,
		Name: "This machine",
	}
	r.states[models.LocalNodeID] = &models.ConnectionState{NodeID: models.LocalNodeID}
	r.locks[models.LocalNodeID] = &sync.Mutex{}
	return r
}

// Register adds or replaces a node's configuration and resets its
// connection state to disconnected with a zeroed attempt counter. The
// transport is responsible for tearing down any connection dialed under a
// replaced config; see Transport.Register.
func (r *Registry) Register(cfg models.NodeConfig) error {
	if cfg.IsLocal() {
		return ErrLocalNode
	}
	if err := utils.ValidateNodeID(cfg.ID); err != nil {
		return utils.NewValidationError("id", cfg.ID)
	}
	if err := utils.ValidateHost(cfg.Host); err != nil {
		return utils.NewValidationError("host", cfg.Host)
	}
	if err := utils.ValidatePort(cfg.Port); err != nil {
		return utils.NewValidationError("port", cfg.Port)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.ID] = cfg
	r.states[cfg.ID] = &models.ConnectionState{NodeID: cfg.ID}
	if _, ok := r.locks[cfg.ID]; !ok {
		r.locks[cfg.ID] = &sync.Mutex{}
	}
	r.logger.Info("node registered", zap.String("node", cfg.ID), zap.String("host", cfg.Host))
	return nil
}

// remove drops a node's configuration and state. The transport is
// responsible for closing any live connection first; see Transport.Deregister.
func (r *Registry) remove(id string) error {
	if id == models.LocalNodeID {
		return ErrLocalNode
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[id]; !ok {
		return ErrUnknownNode
	}
	delete(r.configs, id)
	delete(r.states, id)
	r.logger.Info("node deregistered", zap.String("node", id))
	return nil
}

// Config returns the registered configuration for id.
func (r *Registry) Config(id string) (models.NodeConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	if !ok {
		return models.NodeConfig{}, ErrUnknownNode
	}
	return cfg, nil
}

// List returns every registered configuration, local sentinel first.
func (r *Registry) List() []models.NodeConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.NodeConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsLocal() != out[j].IsLocal() {
			return out[i].IsLocal()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IDs returns every registered node id.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State returns a copy of the node's current connection state.
func (r *Registry) State(id string) (models.ConnectionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[id]
	if !ok {
		return models.ConnectionState{}, ErrUnknownNode
	}
	return *state, nil
}

// nodeLock returns the mutex serializing connect/disconnect operations for
// one node. Locks for distinct nodes never contend. Lock entries survive
// deregistration so a concurrent open on a dying node stays serialized.
func (r *Registry) nodeLock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

func (r *Registry) markConnected(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[id]; ok {
		state.Connected = true
		state.LastSuccess = time.Now()
		state.LastError = ""
	}
}

func (r *Registry) markDisconnected(id, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[id]; ok {
		state.Connected = false
		if errMsg != "" {
			state.LastError = errMsg
		}
	}
}

func (r *Registry) incrementAttempts(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[id]; ok {
		state.Attempts++
	}
}
