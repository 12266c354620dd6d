package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.SSH.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.SSH.CommandTimeout)
	assert.Equal(t, 5, cfg.SSH.MaxDialFailures)
	assert.Equal(t, 30*time.Second, cfg.SSH.DialCooldown)
	assert.Equal(t, 5*time.Second, cfg.Broadcast.Interval)
	assert.Equal(t, 80, cfg.Broadcast.GPUTempWarning)
	assert.Empty(t, cfg.Nodes)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("SSH_COMMAND_TIMEOUT", "90s")
	t.Setenv("BROADCAST_INTERVAL", "2")
	t.Setenv("GPU_TEMP_WARNING", "85")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.SSH.CommandTimeout)
	assert.Equal(t, 2*time.Second, cfg.Broadcast.Interval, "bare numbers are seconds")
	assert.Equal(t, 85, cfg.Broadcast.GPUTempWarning)
}

func TestParseClusterNodes(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "spark_01_ed25519")
	require.NoError(t, os.WriteFile(keyPath, []byte("key material"), 0o600))

	t.Setenv("NODE_SPARK_01_KEY_PATH", keyPath)
	t.Setenv("NODE_SPARK_01_PASSPHRASE", "hunter2")
	t.Setenv("NODE_SPARK_01_TIMEOUT", "45")

	nodes, err := parseClusterNodes("spark-01=nvidia@10.0.0.10:2222, spark-02=nvidia@10.0.0.11")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	first := nodes[0]
	assert.Equal(t, "spark-01", first.ID)
	assert.Equal(t, "10.0.0.10", first.Host)
	assert.Equal(t, 2222, first.Port)
	assert.Equal(t, "nvidia", first.Username)
	assert.Equal(t, "key material", first.PrivateKey)
	assert.Equal(t, "hunter2", first.Passphrase)
	assert.Equal(t, 45*time.Second, first.Timeout)

	second := nodes[1]
	assert.Equal(t, "spark-02", second.ID)
	assert.Equal(t, 22, second.Port, "port defaults to 22")
	assert.Empty(t, second.PrivateKey)
	assert.Zero(t, second.Timeout)
}

func TestParseClusterNodesEmpty(t *testing.T) {
	nodes, err := parseClusterNodes("  ")
	require.NoError(t, err)
	assert.Nil(t, nodes)
}

func TestParseClusterNodesErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing target", "spark-01"},
		{"missing user", "spark-01=10.0.0.10:22"},
		{"bad port", "spark-01=nvidia@10.0.0.10:ssh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseClusterNodes(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseClusterNodesMissingKeyFile(t *testing.T) {
	t.Setenv("NODE_SPARK_03_KEY_PATH", "/nonexistent/key")
	_, err := parseClusterNodes("spark-03=nvidia@10.0.0.12")
	assert.Error(t, err)
}

func TestNodeEnv(t *testing.T) {
	assert.Equal(t, "NODE_SPARK_01_KEY_PATH", nodeEnv("spark-01", "KEY_PATH"))
}
