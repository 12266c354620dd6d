package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGPU(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantNil  bool
		wantName string
		wantUtil float64
		wantUsed int64
		wantTot  int64
		wantTemp int
	}{
		{
			name:     "full nine field line",
			output:   "NVIDIA X100, 92, 62000, 128000, 72, 245, 265, 45, 550.54",
			wantName: "NVIDIA X100",
			wantUtil: 92,
			wantUsed: 62000,
			wantTot:  128000,
			wantTemp: 72,
		},
		{
			name:     "gb10 superchip idle",
			output:   "NVIDIA GB10 Blackwell, 4, 38912, 131072, 46, 82.10, 140.00, 0, 560.35.03",
			wantName: "NVIDIA GB10 Blackwell",
			wantUtil: 4,
			wantUsed: 38912,
			wantTot:  131072,
			wantTemp: 46,
		},
		{
			name:     "five fields without power block",
			output:   "NVIDIA A100, 98, 32768, 40960, 78",
			wantName: "NVIDIA A100",
			wantUtil: 98,
			wantUsed: 32768,
			wantTot:  40960,
			wantTemp: 78,
		},
		{
			name:     "multiple gpus takes first line",
			output:   "NVIDIA GB10 Blackwell, 70, 1000, 131072, 60, 100, 140, 30, 560.35\nNVIDIA GB10 Blackwell, 10, 500, 131072, 40, 90, 140, 20, 560.35",
			wantName: "NVIDIA GB10 Blackwell",
			wantUtil: 70,
			wantUsed: 1000,
			wantTot:  131072,
			wantTemp: 60,
		},
		{
			name:    "empty output",
			output:  "",
			wantNil: true,
		},
		{
			name:    "no devices",
			output:  "No devices were found",
			wantNil: true,
		},
		{
			name:    "command missing",
			output:  "sh: nvidia-smi: not found",
			wantNil: true,
		},
		{
			name:    "driver failure",
			output:  "NVIDIA-SMI has failed because it couldn't communicate with the NVIDIA driver",
			wantNil: true,
		},
		{
			name:    "truncated line",
			output:  "NVIDIA X100, 92, 62000",
			wantNil: true,
		},
		{
			name:    "garbage numeric field",
			output:  "NVIDIA X100, ninety, 62000, 128000, 72",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGPU(tt.output)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantUtil, got.Utilization)
			assert.Equal(t, tt.wantUsed, got.MemoryUsedMB)
			assert.Equal(t, tt.wantTot, got.MemoryTotalMB)
			assert.Equal(t, tt.wantTemp, got.Temperature)
		})
	}
}

func TestParseGPUOptionalFields(t *testing.T) {
	got := ParseGPU("NVIDIA X100, 92, 62000, 128000, 72, 245.5, 265.0, 45, 550.54")
	require.NotNil(t, got)
	assert.Equal(t, 245.5, got.PowerDraw)
	assert.Equal(t, 265.0, got.PowerLimit)
	assert.Equal(t, 45, got.FanSpeed)
	assert.Equal(t, "550.54", got.DriverVersion)
}

func TestParseGPUNotAvailableMarkers(t *testing.T) {
	// Integrated GPUs report [N/A] for fan and power; those default to
	// zero instead of failing the record.
	got := ParseGPU("NVIDIA GB10 Blackwell, 15, 40000, 131072, 51, [N/A], [N/A], [N/A], 560.35.03")
	require.NotNil(t, got)
	assert.Equal(t, 15.0, got.Utilization)
	assert.Zero(t, got.PowerDraw)
	assert.Zero(t, got.PowerLimit)
	assert.Zero(t, got.FanSpeed)
	assert.Equal(t, "560.35.03", got.DriverVersion)
}
