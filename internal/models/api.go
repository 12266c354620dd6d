package models

// RegisterNodeRequest is the payload for adding or replacing a node.
type RegisterNodeRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Username       string `json:"username"`
	PrivateKey     string `json:"privateKey,omitempty"`
	KeyPath        string `json:"keyPath,omitempty"`
	Passphrase     string `json:"passphrase,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// ExecRequest runs a command on the named nodes, or on every registered
// node when NodeIDs is empty.
type ExecRequest struct {
	Command        string   `json:"command"`
	NodeIDs        []string `json:"nodeIds,omitempty"`
	TimeoutSeconds int      `json:"timeoutSeconds,omitempty"`
}

// ExecResponse maps node id to its command result.
type ExecResponse struct {
	Results map[string]CommandResult `json:"results"`
}

// PingResponse reports a node round-trip.
type PingResponse struct {
	NodeID    string `json:"nodeId"`
	Reachable bool   `json:"reachable"`
	LatencyMS int64  `json:"latencyMs"`
	Message   string `json:"message,omitempty"`
}
