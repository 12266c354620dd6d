package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"spark-command-backend/internal/models"
)

type Config struct {
	Server    ServerConfig
	SSH       SSHConfig
	Broadcast BroadcastConfig
	Nodes     []models.NodeConfig
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

type SSHConfig struct {
	ConnectTimeout  time.Duration
	CommandTimeout  time.Duration
	MaxDialFailures int
	DialCooldown    time.Duration
}

type BroadcastConfig struct {
	Interval       time.Duration
	GPUTempWarning int
}

// LoadConfig reads the environment. Cluster nodes arrive fully resolved:
// CLUSTER_NODES holds comma-separated "id=user@host:port" entries, and each
// node's key material is read from NODE_<ID>_KEY_PATH (with an optional
// NODE_<ID>_PASSPHRASE and NODE_<ID>_TIMEOUT in seconds).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: strings.Split(getEnvAsString("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		SSH: SSHConfig{
			ConnectTimeout:  getEnvAsDuration("SSH_CONNECT_TIMEOUT", 10*time.Second),
			CommandTimeout:  getEnvAsDuration("SSH_COMMAND_TIMEOUT", 30*time.Second),
			MaxDialFailures: getEnvAsInt("SSH_MAX_DIAL_FAILURES", 5),
			DialCooldown:    getEnvAsDuration("SSH_DIAL_COOLDOWN", 30*time.Second),
		},
		Broadcast: BroadcastConfig{
			Interval:       getEnvAsDuration("BROADCAST_INTERVAL", 5*time.Second),
			GPUTempWarning: getEnvAsInt("GPU_TEMP_WARNING", 80),
		},
	}

	nodes, err := parseClusterNodes(os.Getenv("CLUSTER_NODES"))
	if err != nil {
		return nil, err
	}
	cfg.Nodes = nodes

	return cfg, nil
}

func parseClusterNodes(raw string) ([]models.NodeConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var nodes []models.NodeConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		id, target, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid CLUSTER_NODES entry %q, want id=user@host:port", entry)
		}
		user, addr, ok := strings.Cut(target, "@")
		if !ok {
			return nil, fmt.Errorf("invalid CLUSTER_NODES entry %q, missing user", entry)
		}

		host := addr
		port := 22
		if h, p, ok := strings.Cut(addr, ":"); ok {
			parsed, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid port in CLUSTER_NODES entry %q", entry)
			}
			host, port = h, parsed
		}

		node := models.NodeConfig{
			ID:       id,
			Name:     id,
			Host:     host,
			Port:     port,
			Username: user,
			Timeout:  getEnvAsDuration(nodeEnv(id, "TIMEOUT"), 0),
		}

		if keyPath := os.Getenv(nodeEnv(id, "KEY_PATH")); keyPath != "" {
			material, err := os.ReadFile(keyPath)
			if err != nil {
				return nil, fmt.Errorf("read key for node %s: %w", id, err)
			}
			node.PrivateKey = string(material)
		}
		node.Passphrase = os.Getenv(nodeEnv(id, "PASSPHRASE"))

		nodes = append(nodes, node)
	}
	return nodes, nil
}

// nodeEnv maps a node id to its env prefix: "spark-01" -> NODE_SPARK_01_*.
func nodeEnv(id, suffix string) string {
	return "NODE_" + strings.ToUpper(strings.ReplaceAll(id, "-", "_")) + "_" + suffix
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts plain seconds ("30") or a Go duration ("90s").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
