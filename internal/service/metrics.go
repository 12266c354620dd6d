package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"spark-command-backend/internal/models"
	"spark-command-backend/internal/parser"
)

// Metrics pulls structured hardware metrics from nodes by running the
// versioned diagnostic queries and handing the raw output to the parsers.
// A nil record with a nil error means "metric unavailable"; only unknown
// node ids produce errors.
type Metrics struct {
	executor *Executor
	logger   *zap.Logger
}

func NewMetrics(executor *Executor, logger *zap.Logger) *Metrics {
	return &Metrics{executor: executor, logger: logger}
}

func (m *Metrics) GPU(ctx context.Context, id string) (*models.GPUMetrics, error) {
	result, err := m.executor.Run(ctx, id, parser.GPUQuery)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, nil
	}
	return parser.ParseGPU(result.Stdout), nil
}

func (m *Metrics) CPU(ctx context.Context, id string) (*models.CPUMetrics, error) {
	result, err := m.executor.Run(ctx, id, parser.CPUQuery)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, nil
	}
	sections := parser.SplitSections(result.Stdout)
	return parser.ParseCPU(section(sections, 0), section(sections, 1), section(sections, 2)), nil
}

func (m *Metrics) Memory(ctx context.Context, id string) (*models.MemoryMetrics, error) {
	result, err := m.executor.Run(ctx, id, parser.MemoryQuery)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, nil
	}
	return parser.ParseMemory(result.Stdout), nil
}

func (m *Metrics) Storage(ctx context.Context, id string) (*models.StorageMetrics, error) {
	result, err := m.executor.Run(ctx, id, parser.StorageQuery)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, nil
	}
	return parser.ParseStorage(result.Stdout), nil
}

func (m *Metrics) System(ctx context.Context, id string) (*models.SystemInfo, error) {
	result, err := m.executor.Run(ctx, id, parser.SystemQuery)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, nil
	}
	sections := parser.SplitSections(result.Stdout)
	return parser.ParseSystemInfo(
		section(sections, 0), section(sections, 1),
		section(sections, 2), section(sections, 3)), nil
}

// Overview collects every metric for a node in a single command batch.
// A failed batch yields an offline overview rather than an error.
func (m *Metrics) Overview(ctx context.Context, id string) (*models.NodeOverview, error) {
	result, err := m.executor.Run(ctx, id, parser.OverviewQuery)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		m.logger.Debug("overview batch failed",
			zap.String("node", id),
			zap.String("stderr", result.Stderr))
		return parser.OfflineOverview(id), nil
	}
	return parser.ParseOverview(id, result.Stdout), nil
}

// ClusterHealth fans the overview batch out to every registered node.
func (m *Metrics) ClusterHealth(ctx context.Context) *models.ClusterHealth {
	results := m.executor.RunOnAll(ctx, parser.OverviewQuery)

	health := &models.ClusterHealth{
		Nodes:       make(map[string]*models.NodeOverview, len(results)),
		CollectedAt: time.Now(),
	}
	for id, result := range results {
		var ov *models.NodeOverview
		if result.Success {
			ov = parser.ParseOverview(id, result.Stdout)
		} else {
			ov = parser.OfflineOverview(id)
		}
		health.Nodes[id] = ov

		switch ov.Status {
		case models.StatusOperational:
			health.Operational++
		case models.StatusDegraded:
			health.Degraded++
		default:
			health.Offline++
		}
	}
	return health
}

// Ping measures a round trip to the node with a trivial echo.
func (m *Metrics) Ping(ctx context.Context, id string) (models.PingResponse, error) {
	result, err := m.executor.Run(ctx, id, "echo pong")
	if err != nil {
		return models.PingResponse{}, err
	}

	resp := models.PingResponse{
		NodeID:    id,
		Reachable: result.Success && result.Stdout == "pong",
		LatencyMS: result.Duration.Milliseconds(),
	}
	if !resp.Reachable {
		resp.Message = result.Stderr
	}
	return resp, nil
}

func section(sections []string, i int) string {
	if i < len(sections) {
		return sections[i]
	}
	return ""
}
