package parser

import (
	"strconv"
	"strings"

	"spark-command-backend/internal/models"
)

// ParseSystemInfo parses the four sections of SystemQuery output. The
// hostname is required; uptime, kernel and OS name default to zero / ""
// when their sections are missing or malformed.
func ParseSystemInfo(hostname, procUptime, kernel, osRelease string) *models.SystemInfo {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return nil
	}

	info := &models.SystemInfo{
		Hostname: hostname,
		Kernel:   strings.TrimSpace(kernel),
	}

	// /proc/uptime: "<seconds up> <seconds idle>"
	if fields := strings.Fields(procUptime); len(fields) > 0 {
		if up, err := strconv.ParseFloat(fields[0], 64); err == nil {
			info.UptimeSeconds = int64(up)
		}
	}

	// os-release: PRETTY_NAME="Ubuntu 24.04 LTS"
	if idx := strings.Index(osRelease, "="); idx != -1 {
		info.OS = strings.Trim(strings.TrimSpace(osRelease[idx+1:]), `"`)
	}

	return info
}
