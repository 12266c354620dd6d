package parser

import (
	"bufio"
	"strconv"
	"strings"

	"spark-command-backend/internal/models"
)

// ParseMemory parses /proc/meminfo key/value lines (values in kB). MemTotal
// and MemFree are required; the record is nil without them. MemAvailable,
// Buffers and Cached default to zero when the kernel omits them.
func ParseMemory(procMeminfo string) *models.MemoryMetrics {
	var memTotal, memFree, memAvailable, buffers, cached int64
	var haveTotal, haveFree bool

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		valBytes := val * 1024

		switch strings.TrimSuffix(parts[0], ":") {
		case "MemTotal":
			memTotal = valBytes
			haveTotal = true
		case "MemFree":
			memFree = valBytes
			haveFree = true
		case "MemAvailable":
			memAvailable = valBytes
		case "Buffers":
			buffers = valBytes
		case "Cached":
			cached = valBytes
		}
	}

	if !haveTotal || !haveFree {
		return nil
	}

	return &models.MemoryMetrics{
		TotalBytes:     memTotal,
		UsedBytes:      memTotal - memFree - buffers - cached,
		AvailableBytes: memAvailable,
		CachedBytes:    cached + buffers,
	}
}
