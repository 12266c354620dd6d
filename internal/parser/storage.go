package parser

import (
	"strconv"
	"strings"

	"spark-command-backend/internal/models"
)

// ParseStorage parses `df -B1` output for a single filesystem: the last
// data row wins, skipping the header. Expected columns are device, total,
// used, available, use%, mountpoint. Returns nil when no data row parses.
func ParseStorage(dfOutput string) *models.StorageMetrics {
	lines := strings.Split(strings.TrimSpace(dfOutput), "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		fields := strings.Fields(lines[i])
		if len(fields) < 6 || fields[0] == "Filesystem" {
			continue
		}

		total, errT := strconv.ParseInt(fields[1], 10, 64)
		used, errU := strconv.ParseInt(fields[2], 10, 64)
		avail, errA := strconv.ParseInt(fields[3], 10, 64)
		if errT != nil || errU != nil || errA != nil {
			continue
		}

		pct, err := strconv.ParseFloat(strings.TrimSuffix(fields[4], "%"), 64)
		if err != nil {
			pct = 0
		}

		return &models.StorageMetrics{
			Device:         fields[0],
			TotalBytes:     total,
			UsedBytes:      used,
			AvailableBytes: avail,
			UsedPercent:    pct,
			Mountpoint:     fields[5],
		}
	}

	return nil
}
