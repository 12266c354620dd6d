package models

import "time"

// Node operational status derived from a metrics snapshot.
const (
	StatusOperational = "operational"
	StatusDegraded    = "degraded"
	StatusOffline     = "offline"
)

// GPUMetrics holds one GPU's state as reported by the device inventory
// query. Memory values are MiB; missing fields default to zero values.
type GPUMetrics struct {
	Name          string  `json:"name"`
	Utilization   float64 `json:"utilization"`
	MemoryUsedMB  int64   `json:"memoryUsed"`
	MemoryTotalMB int64   `json:"memoryTotal"`
	Temperature   int     `json:"temperature"`
	PowerDraw     float64 `json:"powerDraw"`
	PowerLimit    float64 `json:"powerLimit"`
	FanSpeed      int     `json:"fanSpeed"`
	DriverVersion string  `json:"driverVersion"`
}

// CPUMetrics holds processor usage and load. Usage is the since-boot busy
// percentage derived from a single /proc/stat sample.
type CPUMetrics struct {
	Model   string     `json:"model"`
	Cores   int        `json:"cores"`
	Usage   float64    `json:"usage"`
	LoadAvg [3]float64 `json:"loadAvg"`
}

// MemoryMetrics holds system memory usage in bytes.
type MemoryMetrics struct {
	TotalBytes     int64 `json:"totalBytes"`
	UsedBytes      int64 `json:"usedBytes"`
	AvailableBytes int64 `json:"availableBytes"`
	CachedBytes    int64 `json:"cachedBytes"`
}

// StorageMetrics holds filesystem usage for the root mount in bytes.
type StorageMetrics struct {
	Device         string  `json:"device"`
	TotalBytes     int64   `json:"totalBytes"`
	UsedBytes      int64   `json:"usedBytes"`
	AvailableBytes int64   `json:"availableBytes"`
	UsedPercent    float64 `json:"usedPercent"`
	Mountpoint     string  `json:"mountpoint"`
}

// SystemInfo holds host identity details.
type SystemInfo struct {
	Hostname      string `json:"hostname"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Kernel        string `json:"kernel"`
	OS            string `json:"os"`
}

// NodeOverview is the composite snapshot assembled from the individual
// metric parsers plus a derived operational status. Metric pointers are nil
// when the corresponding output could not be parsed.
type NodeOverview struct {
	NodeID      string          `json:"nodeId"`
	Status      string          `json:"status"`
	GPU         *GPUMetrics     `json:"gpu,omitempty"`
	CPU         *CPUMetrics     `json:"cpu,omitempty"`
	Memory      *MemoryMetrics  `json:"memory,omitempty"`
	Storage     *StorageMetrics `json:"storage,omitempty"`
	System      *SystemInfo     `json:"system,omitempty"`
	CollectedAt time.Time       `json:"collectedAt"`
}

// SystemMetrics bundles the non-GPU portion of a snapshot for broadcasting.
type SystemMetrics struct {
	NodeID  string          `json:"nodeId"`
	CPU     *CPUMetrics     `json:"cpu,omitempty"`
	Memory  *MemoryMetrics  `json:"memory,omitempty"`
	Storage *StorageMetrics `json:"storage,omitempty"`
	System  *SystemInfo     `json:"system,omitempty"`
}

// ClusterHealth aggregates overviews across every registered node.
type ClusterHealth struct {
	Nodes       map[string]*NodeOverview `json:"nodes"`
	Operational int                      `json:"operational"`
	Degraded    int                      `json:"degraded"`
	Offline     int                      `json:"offline"`
	CollectedAt time.Time                `json:"collectedAt"`
}
