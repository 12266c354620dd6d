package parser

import (
	"strconv"
	"strings"

	"spark-command-backend/internal/models"
)

// ParseGPU parses the first line of GPUQuery output. Returns nil when no
// GPU is available, the output carries an error indicator, or a required
// field (name through temperature) is missing or non-numeric. The optional
// tail fields (power draw, power limit, fan speed, driver version) default
// to 0 / "" when absent or reported as [N/A].
func ParseGPU(output string) *models.GPUMetrics {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}

	lower := strings.ToLower(output)
	if strings.Contains(lower, "no devices") ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "error") {
		return nil
	}

	// One line per GPU; the GB10 superchip has a single device, so only
	// the first line is consumed.
	line := output
	if idx := strings.IndexByte(output, '\n'); idx != -1 {
		line = output[:idx]
	}

	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return nil
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	metrics := &models.GPUMetrics{Name: fields[0]}
	if metrics.Name == "" {
		return nil
	}

	var ok bool
	if metrics.Utilization, ok = requiredFloat(fields[1]); !ok {
		return nil
	}
	if metrics.MemoryUsedMB, ok = requiredInt(fields[2]); !ok {
		return nil
	}
	if metrics.MemoryTotalMB, ok = requiredInt(fields[3]); !ok {
		return nil
	}
	temp, ok := requiredInt(fields[4])
	if !ok {
		return nil
	}
	metrics.Temperature = int(temp)

	if len(fields) > 5 {
		metrics.PowerDraw = optionalFloat(fields[5])
	}
	if len(fields) > 6 {
		metrics.PowerLimit = optionalFloat(fields[6])
	}
	if len(fields) > 7 {
		metrics.FanSpeed = int(optionalFloat(fields[7]))
	}
	if len(fields) > 8 && fields[8] != "[N/A]" {
		metrics.DriverVersion = fields[8]
	}

	return metrics
}

// requiredFloat accepts a numeric field or the [N/A] marker (which defaults
// to zero); anything else marks the record malformed.
func requiredFloat(s string) (float64, bool) {
	if s == "" || s == "[N/A]" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func requiredInt(s string) (int64, bool) {
	if s == "" || s == "[N/A]" {
		return 0, true
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// optionalFloat defaults to zero on anything unparseable.
func optionalFloat(s string) float64 {
	if s == "" || s == "[N/A]" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
