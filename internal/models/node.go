package models

import "time"

// LocalNodeID is the reserved identifier for the machine running this
// service. It is always registered and never carries a transport.
const LocalNodeID = "local"

// NodeConfig describes how to reach a cluster node. Configs are immutable
// once registered; updating a node replaces the whole record.
type NodeConfig struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Host       string        `json:"host"`
	Port       int           `json:"port"`
	Username   string        `json:"username"`
	PrivateKey string        `json:"-"`
	Passphrase string        `json:"-"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// IsLocal reports whether this config denotes the local machine.
func (c NodeConfig) IsLocal() bool {
	return c.ID == LocalNodeID
}

// ConnectionState tracks the transport status of one registered node.
type ConnectionState struct {
	NodeID      string    `json:"nodeId"`
	Connected   bool      `json:"connected"`
	LastSuccess time.Time `json:"lastSuccess,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
	Attempts    int       `json:"attempts"`
}

// CommandResult captures one command invocation against a node. ExitCode is
// -1 when the command never ran (transport failure, timeout, dispatch error).
type CommandResult struct {
	Success  bool          `json:"success"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr,omitempty"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}
