package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spark-command-backend/internal/models"
)

func overviewFixture(gpuLine string) string {
	sections := []string{
		gpuLine,
		procStatFixture,
		"0.52 0.58 0.59 2/1024 31286",
		"model name\t: Cortex-X925",
		procMeminfoFixture,
		"Filesystem 1B-blocks Used Available Use% Mounted on\n/dev/nvme0n1p2 3937053016064 1212333056000 2724719960064 31% /",
		"dgx-spark-01",
		"432000.12 1723881.33",
		"Linux 6.11.0-1012-nvidia",
		`PRETTY_NAME="Ubuntu 24.04.1 LTS"`,
	}
	return strings.Join(sections, "\n---\n")
}

func TestSplitSections(t *testing.T) {
	out := "first line\nsecond line\n---\nlonely\n---\n\n---\nlast"
	sections := SplitSections(out)
	require.Len(t, sections, 4)
	assert.Equal(t, "first line\nsecond line", sections[0])
	assert.Equal(t, "lonely", sections[1])
	assert.Equal(t, "", sections[2])
	assert.Equal(t, "last", sections[3])

	// Separator detection tolerates trailing whitespace from the shell.
	sections = SplitSections("a\n--- \nb")
	require.Len(t, sections, 2)
	assert.Equal(t, "b", sections[1])
}

func TestParseOverviewOperational(t *testing.T) {
	out := overviewFixture("NVIDIA GB10, 34, 8192, 131072, 52, 38.20, 140.00, 0, 560.35.03")
	ov := ParseOverview("spark-01", out)
	require.NotNil(t, ov)

	assert.Equal(t, "spark-01", ov.NodeID)
	assert.Equal(t, models.StatusOperational, ov.Status)
	require.NotNil(t, ov.GPU)
	assert.Equal(t, "NVIDIA GB10", ov.GPU.Name)
	assert.Equal(t, 52, ov.GPU.Temperature)
	require.NotNil(t, ov.CPU)
	assert.Equal(t, 4, ov.CPU.Cores)
	require.NotNil(t, ov.Memory)
	require.NotNil(t, ov.Storage)
	assert.Equal(t, "/", ov.Storage.Mountpoint)
	require.NotNil(t, ov.System)
	assert.Equal(t, "dgx-spark-01", ov.System.Hostname)
	assert.False(t, ov.CollectedAt.IsZero())
}

func TestParseOverviewDegraded(t *testing.T) {
	tests := []struct {
		name    string
		gpuLine string
	}{
		{"hot gpu", "NVIDIA GB10, 34, 8192, 131072, 85, 95.00, 140.00, 40, 560.35.03"},
		{"saturated gpu", "NVIDIA GB10, 97, 8192, 131072, 52, 120.00, 140.00, 40, 560.35.03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov := ParseOverview("spark-01", overviewFixture(tt.gpuLine))
			require.NotNil(t, ov)
			assert.Equal(t, models.StatusDegraded, ov.Status)
		})
	}
}

func TestParseOverviewDegradedMemoryPressure(t *testing.T) {
	sections := []string{
		"",
		procStatFixture,
		"", "",
		"MemTotal: 1000000 kB\nMemFree: 20000 kB\nBuffers: 0 kB\nCached: 0 kB",
		"", "", "", "", "",
	}
	ov := ParseOverview("spark-02", strings.Join(sections, "\n---\n"))
	require.NotNil(t, ov)
	assert.Nil(t, ov.GPU, "no GPU section on this node")
	assert.Equal(t, models.StatusDegraded, ov.Status)
}

func TestParseOverviewOffline(t *testing.T) {
	// A batch that ran but produced nothing usable still derives offline.
	ov := ParseOverview("spark-03", "bash: nvidia-smi: command not found")
	require.NotNil(t, ov)
	assert.Equal(t, models.StatusOffline, ov.Status)
	assert.Nil(t, ov.GPU)
	assert.Nil(t, ov.CPU)
	assert.Nil(t, ov.Memory)
}

func TestOfflineOverview(t *testing.T) {
	ov := OfflineOverview("spark-04")
	assert.Equal(t, "spark-04", ov.NodeID)
	assert.Equal(t, models.StatusOffline, ov.Status)
	assert.False(t, ov.CollectedAt.IsZero())
}

func TestOverviewQuerySectionCount(t *testing.T) {
	// The query joins ten commands; its output must split back into the
	// ten sections ParseOverview indexes.
	count := strings.Count(OverviewQuery, fmt.Sprintf(`echo "%s"`, SectionSeparator))
	assert.Equal(t, 9, count)
}
