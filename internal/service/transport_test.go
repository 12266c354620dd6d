package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	sshpkg "spark-command-backend/internal/pkg/ssh"
)

func newTestTransport(t *testing.T) (*Transport, *Registry) {
	t.Helper()
	logger := zap.NewNop()
	registry := NewRegistry(logger)
	transport := NewTransport(registry, logger)
	transport.SetConnectTimeout(200 * time.Millisecond)
	return transport, registry
}

func TestTransportOpenLocal(t *testing.T) {
	transport, registry := newTestTransport(t)

	require.NoError(t, transport.Open(context.Background(), models.LocalNodeID))

	state, err := registry.State(models.LocalNodeID)
	require.NoError(t, err)
	assert.True(t, state.Connected)
	assert.Zero(t, state.Attempts, "the sentinel never dials")

	_, ok := transport.Client(models.LocalNodeID)
	assert.False(t, ok, "no connection resource is held for the sentinel")
}

func TestTransportOpenUnknownNode(t *testing.T) {
	transport, _ := newTestTransport(t)
	assert.ErrorIs(t, transport.Open(context.Background(), "ghost"), ErrUnknownNode)
}

func TestTransportOpenFailureMarksState(t *testing.T) {
	transport, registry := newTestTransport(t)
	cfg := testNodeConfig("node-a")
	cfg.Port = 1
	require.NoError(t, registry.Register(cfg))

	err := transport.Open(context.Background(), "node-a")
	require.Error(t, err)

	state, stateErr := registry.State("node-a")
	require.NoError(t, stateErr)
	assert.False(t, state.Connected)
	assert.Equal(t, 1, state.Attempts)
	assert.NotEmpty(t, state.LastError)
}

func TestTransportDialCooldown(t *testing.T) {
	transport, registry := newTestTransport(t)
	transport.SetRetryPolicy(1, time.Hour)

	cfg := testNodeConfig("node-a")
	cfg.Port = 1
	require.NoError(t, registry.Register(cfg))

	require.Error(t, transport.Open(context.Background(), "node-a"), "first open dials and fails")

	err := transport.Open(context.Background(), "node-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrying")

	state, stateErr := registry.State("node-a")
	require.NoError(t, stateErr)
	assert.Equal(t, 1, state.Attempts, "cooled-down opens do not dial")
}

func TestTransportRegisterReplaceClearsFailureState(t *testing.T) {
	transport, registry := newTestTransport(t)
	transport.SetRetryPolicy(1, time.Hour)

	cfg := testNodeConfig("node-a")
	cfg.Port = 1
	require.NoError(t, transport.Register(cfg))

	require.Error(t, transport.Open(context.Background(), "node-a"))
	err := transport.Open(context.Background(), "node-a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "retrying", "cooldown tripped")

	// A wholesale replace resets the bookkeeping: the next open dials the
	// new config instead of reporting the old cooldown.
	cfg.Host = "127.0.0.2"
	require.NoError(t, transport.Register(cfg))

	err = transport.Open(context.Background(), "node-a")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "retrying")

	state, stateErr := registry.State("node-a")
	require.NoError(t, stateErr)
	assert.Equal(t, 1, state.Attempts, "replace zeroes the attempt counter")
}

func TestTransportRegisterReplaceEvictsLiveClient(t *testing.T) {
	transport, _ := newTestTransport(t)

	cfg := testNodeConfig("node-a")
	require.NoError(t, transport.Register(cfg))

	// Plant a connected-looking client handle under the old config.
	transport.mu.Lock()
	transport.clients["node-a"] = sshpkg.NewClient(sshpkg.Config{Host: cfg.Host, Port: cfg.Port})
	transport.mu.Unlock()

	cfg.Host = "10.0.0.99"
	require.NoError(t, transport.Register(cfg))

	_, ok := transport.Client("node-a")
	assert.False(t, ok, "a connection dialed under the old config never survives a replace")
}

func TestTransportRegisterRejectsLocal(t *testing.T) {
	transport, _ := newTestTransport(t)
	assert.ErrorIs(t, transport.Register(testNodeConfig(models.LocalNodeID)), ErrLocalNode)
}

func TestTransportCooldownClearedByDeregister(t *testing.T) {
	transport, registry := newTestTransport(t)
	transport.SetRetryPolicy(1, time.Hour)

	cfg := testNodeConfig("node-a")
	cfg.Port = 1
	require.NoError(t, registry.Register(cfg))
	require.Error(t, transport.Open(context.Background(), "node-a"))

	require.NoError(t, transport.Deregister("node-a"))
	require.NoError(t, registry.Register(cfg))

	// Fresh registration dials again instead of reporting the cooldown.
	err := transport.Open(context.Background(), "node-a")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "retrying")
}

func TestTransportCloseIdempotent(t *testing.T) {
	transport, registry := newTestTransport(t)
	require.NoError(t, registry.Register(testNodeConfig("node-a")))

	require.NoError(t, transport.Close("node-a"))
	require.NoError(t, transport.Close("node-a"))

	assert.ErrorIs(t, transport.Close("ghost"), ErrUnknownNode)
}

func TestTransportDeregister(t *testing.T) {
	transport, registry := newTestTransport(t)
	require.NoError(t, registry.Register(testNodeConfig("node-a")))

	require.NoError(t, transport.Deregister("node-a"))
	_, err := registry.Config("node-a")
	assert.ErrorIs(t, err, ErrUnknownNode)

	assert.ErrorIs(t, transport.Deregister(models.LocalNodeID), ErrLocalNode)
	assert.ErrorIs(t, transport.Deregister("node-a"), ErrUnknownNode)
}

func TestTransportCloseAll(t *testing.T) {
	transport, registry := newTestTransport(t)
	require.NoError(t, registry.Register(testNodeConfig("node-a")))
	require.NoError(t, transport.Open(context.Background(), models.LocalNodeID))

	transport.CloseAll()

	state, err := registry.State(models.LocalNodeID)
	require.NoError(t, err)
	assert.True(t, state.Connected, "shutdown leaves the sentinel alone")
}
