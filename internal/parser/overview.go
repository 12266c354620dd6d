package parser

import (
	"time"

	"spark-command-backend/internal/models"
)

// Thresholds driving the derived operational status and broadcast alerts.
const (
	GPUTempWarning  = 80
	GPUTempCritical = 90
	GPUUtilWarning  = 95.0
	MemUsedWarning  = 0.95
)

// ParseOverview splits one OverviewQuery result into the individual metric
// records and derives the node status. A nil return only happens for an
// empty input; individual sections degrade to nil records instead.
func ParseOverview(nodeID, output string) *models.NodeOverview {
	sections := SplitSections(output)
	section := func(i int) string {
		if i < len(sections) {
			return sections[i]
		}
		return ""
	}

	ov := &models.NodeOverview{
		NodeID:      nodeID,
		GPU:         ParseGPU(section(0)),
		CPU:         ParseCPU(section(1), section(2), section(3)),
		Memory:      ParseMemory(section(4)),
		Storage:     ParseStorage(section(5)),
		System:      ParseSystemInfo(section(6), section(7), section(8), section(9)),
		CollectedAt: time.Now(),
	}
	ov.Status = deriveStatus(ov)
	return ov
}

// OfflineOverview is the snapshot for a node whose command batch failed
// entirely.
func OfflineOverview(nodeID string) *models.NodeOverview {
	return &models.NodeOverview{
		NodeID:      nodeID,
		Status:      models.StatusOffline,
		CollectedAt: time.Now(),
	}
}

// deriveStatus: offline when no core metrics parsed at all, degraded when
// temperature or usage crosses a warning threshold, operational otherwise.
func deriveStatus(ov *models.NodeOverview) string {
	if ov.CPU == nil && ov.Memory == nil && ov.GPU == nil {
		return models.StatusOffline
	}

	if ov.GPU != nil {
		if ov.GPU.Temperature >= GPUTempWarning || ov.GPU.Utilization >= GPUUtilWarning {
			return models.StatusDegraded
		}
	}
	if ov.Memory != nil && ov.Memory.TotalBytes > 0 {
		if float64(ov.Memory.UsedBytes)/float64(ov.Memory.TotalBytes) >= MemUsedWarning {
			return models.StatusDegraded
		}
	}

	return models.StatusOperational
}
