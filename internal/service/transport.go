package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	sshpkg "spark-command-backend/internal/pkg/ssh"
	"spark-command-backend/pkg/utils"
)

const (
	defaultConnectTimeout  = 10 * time.Second
	defaultMaxDialFailures = 5
	defaultDialCooldown    = 30 * time.Second
)

// Transport owns the live SSH connections. The live-connection store and the
// registry's ConnectionState always change together under the node's lock: a
// stored client implies a connected state and vice versa.
type Transport struct {
	registry *Registry
	logger   *zap.Logger

	connectTimeout  time.Duration
	maxDialFailures int
	dialCooldown    time.Duration

	// mu guards the maps. Per-node serialization (no duplicate dials,
	// no state races) comes from the registry's node locks; mu is only
	// held for map reads/writes, never across a dial.
	mu            sync.Mutex
	clients       map[string]*sshpkg.Client
	dialFailures  map[string]int
	cooldownUntil map[string]time.Time
}

func NewTransport(registry *Registry, logger *zap.Logger) *Transport {
	return &Transport{
		registry:        registry,
		logger:          logger,
		connectTimeout:  defaultConnectTimeout,
		maxDialFailures: defaultMaxDialFailures,
		dialCooldown:    defaultDialCooldown,
		clients:         make(map[string]*sshpkg.Client),
		dialFailures:    make(map[string]int),
		cooldownUntil:   make(map[string]time.Time),
	}
}

// SetConnectTimeout overrides the default dial timeout.
func (t *Transport) SetConnectTimeout(d time.Duration) {
	t.connectTimeout = d
}

// SetRetryPolicy overrides the bounded-retry policy: after maxFailures
// consecutive dial failures, opens are refused until cooldown elapses.
func (t *Transport) SetRetryPolicy(maxFailures int, cooldown time.Duration) {
	t.maxDialFailures = maxFailures
	t.dialCooldown = cooldown
}

// Register installs or replaces a node's configuration. A replace is
// wholesale: any connection dialed under the old config is torn down and
// the failure bookkeeping is reset, so the next Open dials fresh.
func (t *Transport) Register(cfg models.NodeConfig) error {
	lock := t.registry.nodeLock(cfg.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := t.registry.Register(cfg); err != nil {
		return err
	}

	t.mu.Lock()
	client, ok := t.clients[cfg.ID]
	delete(t.clients, cfg.ID)
	delete(t.dialFailures, cfg.ID)
	delete(t.cooldownUntil, cfg.ID)
	t.mu.Unlock()

	if ok {
		if err := client.Close(); err != nil {
			t.logger.Warn("ssh close on replace failed", zap.String("node", cfg.ID), zap.Error(err))
		}
	}
	return nil
}

// Open ensures a live connection to the node, bounded by the connect
// timeout and any deadline on ctx. Opening the local sentinel marks it
// connected without creating any resource; opening an already connected
// node succeeds idempotently.
func (t *Transport) Open(ctx context.Context, id string) error {
	cfg, err := t.registry.Config(id)
	if err != nil {
		return err
	}

	if cfg.IsLocal() {
		t.registry.markConnected(id)
		return nil
	}

	lock := t.registry.nodeLock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, ok := t.client(id); ok {
		return nil
	}

	if failures, until, cooling := t.coolingDown(id); cooling {
		err := fmt.Errorf("node %s unreachable after %d attempts, retrying after %s",
			id, failures, time.Until(until).Round(time.Second))
		t.registry.markDisconnected(id, err.Error())
		return utils.NewConnectionError(id, err)
	}

	t.registry.incrementAttempts(id)

	client := sshpkg.NewClient(sshpkg.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Username:   cfg.Username,
		PrivateKey: cfg.PrivateKey,
		Passphrase: cfg.Passphrase,
		Timeout:    t.connectTimeout,
	})

	if err := client.Connect(ctx); err != nil {
		t.registry.markDisconnected(id, err.Error())
		if failures := t.recordFailure(id); failures >= t.maxDialFailures {
			t.logger.Warn("node entering dial cooldown",
				zap.String("node", id),
				zap.Int("failures", failures),
				zap.Duration("cooldown", t.dialCooldown))
		}
		t.logger.Error("ssh connect failed", zap.String("node", id), zap.Error(err))
		return utils.NewConnectionError(id, err)
	}

	t.mu.Lock()
	t.clients[id] = client
	t.dialFailures[id] = 0
	delete(t.cooldownUntil, id)
	t.mu.Unlock()

	t.registry.markConnected(id)
	t.logger.Info("ssh connected", zap.String("node", id), zap.String("host", cfg.Host))

	go t.watch(id, client)
	return nil
}

func (t *Transport) client(id string) (*sshpkg.Client, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	client, ok := t.clients[id]
	return client, ok
}

func (t *Transport) coolingDown(id string) (int, time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.cooldownUntil[id]
	if !ok || time.Now().After(until) {
		return 0, time.Time{}, false
	}
	return t.dialFailures[id], until, true
}

func (t *Transport) recordFailure(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialFailures[id]++
	failures := t.dialFailures[id]
	if failures >= t.maxDialFailures {
		t.cooldownUntil[id] = time.Now().Add(t.dialCooldown)
	}
	return failures
}

// watch blocks until the connection dies, then evicts the handle and flips
// the state so the next Open dials fresh instead of reusing a dead client.
func (t *Transport) watch(id string, client *sshpkg.Client) {
	err := client.Wait()

	lock := t.registry.nodeLock(id)
	lock.Lock()
	defer lock.Unlock()

	t.mu.Lock()
	current := t.clients[id]
	if current != client {
		// Already closed or replaced by a newer connection.
		t.mu.Unlock()
		return
	}
	delete(t.clients, id)
	t.mu.Unlock()

	msg := "connection lost"
	if err != nil {
		msg = fmt.Sprintf("connection lost: %v", err)
	}
	t.registry.markDisconnected(id, msg)
	t.logger.Warn("ssh connection dropped", zap.String("node", id), zap.Error(err))
}

// Client returns the live connection for a node, if one is open.
func (t *Transport) Client(id string) (*sshpkg.Client, bool) {
	return t.client(id)
}

// Close releases the node's connection and marks it disconnected. Closing an
// already closed node, or the local sentinel, is a safe no-op on resources.
func (t *Transport) Close(id string) error {
	if _, err := t.registry.Config(id); err != nil {
		return err
	}

	lock := t.registry.nodeLock(id)
	lock.Lock()
	defer lock.Unlock()

	t.mu.Lock()
	client, ok := t.clients[id]
	delete(t.clients, id)
	t.mu.Unlock()

	if ok {
		if err := client.Close(); err != nil {
			t.logger.Warn("ssh close failed", zap.String("node", id), zap.Error(err))
		}
	}
	t.registry.markDisconnected(id, "")
	return nil
}

// CloseAll closes every open connection. Used at shutdown.
func (t *Transport) CloseAll() {
	for _, id := range t.registry.IDs() {
		if id == models.LocalNodeID {
			continue
		}
		if err := t.Close(id); err != nil {
			t.logger.Warn("close on shutdown failed", zap.String("node", id), zap.Error(err))
		}
	}
}

// Deregister closes any open connection for the node and removes both its
// configuration and state. The local sentinel is rejected.
func (t *Transport) Deregister(id string) error {
	if id == models.LocalNodeID {
		return ErrLocalNode
	}
	if err := t.Close(id); err != nil {
		return err
	}

	t.mu.Lock()
	delete(t.dialFailures, id)
	delete(t.cooldownUntil, id)
	t.mu.Unlock()

	return t.registry.remove(id)
}
