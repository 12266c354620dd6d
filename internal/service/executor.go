package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"spark-command-backend/internal/models"
)

const defaultCommandTimeout = 30 * time.Second

// Executor runs a single command against one node, locally for the sentinel
// and over SSH otherwise. Every invocation is bounded by a deadline and
// always yields a well-formed CommandResult; only an unknown node id is
// surfaced as an error.
type Executor struct {
	registry  *Registry
	transport *Transport
	timeout   time.Duration
	logger    *zap.Logger
}

func NewExecutor(registry *Registry, transport *Transport, logger *zap.Logger) *Executor {
	return &Executor{
		registry:  registry,
		transport: transport,
		timeout:   defaultCommandTimeout,
		logger:    logger,
	}
}

// SetTimeout overrides the default per-command timeout. Per-node config
// overrides and caller deadlines still take precedence.
func (e *Executor) SetTimeout(d time.Duration) {
	e.timeout = d
}

// Run executes command on the node and captures its outcome. A transport
// failure becomes a zero-duration unsuccessful result; a timeout becomes a
// failed result with exit code -1 and elapsed >= the timeout.
func (e *Executor) Run(ctx context.Context, id, command string) (models.CommandResult, error) {
	cfg, err := e.registry.Config(id)
	if err != nil {
		return models.CommandResult{}, err
	}

	timeout := e.timeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if cfg.IsLocal() {
		return e.runLocal(ctx, command, timeout), nil
	}

	if err := e.transport.Open(ctx, id); err != nil {
		return models.CommandResult{
			Success:  false,
			Stderr:   err.Error(),
			ExitCode: -1,
		}, nil
	}

	client, ok := e.transport.Client(id)
	if !ok {
		// Connection dropped between open and exec; treat as a
		// transport failure, not a caller error.
		return models.CommandResult{
			Success:  false,
			Stderr:   fmt.Sprintf("connection to node %s lost before execution", id),
			ExitCode: -1,
		}, nil
	}

	start := time.Now()
	stdout, stderr, exitCode, runErr := client.Run(ctx, command)
	elapsed := time.Since(start)

	result := models.CommandResult{
		Stdout:   strings.TrimSpace(stdout),
		Stderr:   strings.TrimSpace(stderr),
		ExitCode: exitCode,
		Duration: elapsed,
	}

	switch {
	case errors.Is(runErr, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		result.Success = false
		result.ExitCode = -1
		result.Stderr = "command canceled"
	case errors.Is(runErr, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Success = false
		result.ExitCode = -1
		result.Stderr = fmt.Sprintf("command timed out after %s", timeout)
	case runErr != nil:
		result.Success = false
		result.ExitCode = -1
		result.Stderr = runErr.Error()
	default:
		result.Success = exitCode == 0
	}

	if !result.Success {
		e.logger.Debug("remote command failed",
			zap.String("node", id),
			zap.String("command", command),
			zap.Int("exitCode", result.ExitCode))
	}
	return result, nil
}

// runLocal spawns the command as a local shell process.
func (e *Executor) runLocal(ctx context.Context, command string, timeout time.Duration) models.CommandResult {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := models.CommandResult{
		Stdout:   strings.TrimSpace(stdoutBuf.String()),
		Stderr:   strings.TrimSpace(stderrBuf.String()),
		Duration: elapsed,
	}

	if ctx.Err() != nil {
		result.Success = false
		result.ExitCode = -1
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.Stderr = fmt.Sprintf("command timed out after %s", timeout)
		} else {
			result.Stderr = "command canceled"
		}
		return result
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result
		}
		result.ExitCode = -1
		result.Stderr = runErr.Error()
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}
