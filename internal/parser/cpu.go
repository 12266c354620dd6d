package parser

import (
	"bufio"
	"strconv"
	"strings"

	"spark-command-backend/internal/models"
)

// ParseCPU parses the three sections of CPUQuery output. The usage figure
// is the since-boot busy percentage from the aggregate /proc/stat line.
// Returns nil when the stat section is missing or malformed; loadavg and
// the model line are optional and default to zeros / "".
func ParseCPU(procStat, procLoadavg, cpuinfoModel string) *models.CPUMetrics {
	metrics := &models.CPUMetrics{}

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	var totalJiffies, idleJiffies int64
	sawAggregate := false

	for scanner.Scan() {
		line := scanner.Text()

		// Per-core lines (cpu0, cpu1, ...) only contribute the count.
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			metrics.Cores++
			continue
		}

		if strings.HasPrefix(line, "cpu ") {
			fields := strings.Fields(line)
			if len(fields) < 5 {
				return nil
			}
			// cpu user nice system idle iowait irq softirq steal ...
			for i := 1; i < len(fields); i++ {
				val, err := strconv.ParseInt(fields[i], 10, 64)
				if err != nil {
					return nil
				}
				totalJiffies += val
				if i == 4 || i == 5 {
					idleJiffies += val
				}
			}
			sawAggregate = true
		}
	}

	if !sawAggregate || totalJiffies == 0 {
		return nil
	}
	metrics.Usage = float64(totalJiffies-idleJiffies) / float64(totalJiffies) * 100

	if fields := strings.Fields(strings.TrimSpace(procLoadavg)); len(fields) >= 3 {
		for i := 0; i < 3; i++ {
			if val, err := strconv.ParseFloat(fields[i], 64); err == nil {
				metrics.LoadAvg[i] = val
			}
		}
	}

	// "model name	: Cortex-X925" from /proc/cpuinfo.
	if idx := strings.Index(cpuinfoModel, ":"); idx != -1 {
		metrics.Model = strings.TrimSpace(cpuinfoModel[idx+1:])
	}

	return metrics
}
