package service

import (
	"context"
	"sync"

	"spark-command-backend/internal/models"
)

// RunOnNodes executes command on every named node concurrently and returns
// one result per requested id. A node's failure, timeout, or unknown id
// never blocks or drops another node's result.
func (e *Executor) RunOnNodes(ctx context.Context, ids []string, command string) map[string]models.CommandResult {
	results := make(map[string]models.CommandResult, len(ids))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			result, err := e.Run(ctx, id, command)
			if err != nil {
				// Unknown node: still produce an entry so the
				// mapping covers every requested id.
				result = models.CommandResult{
					Success:  false,
					Stderr:   err.Error(),
					ExitCode: -1,
				}
			}

			mu.Lock()
			results[id] = result
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return results
}

// RunOnAll executes command on every registered node, the local sentinel
// included.
func (e *Executor) RunOnAll(ctx context.Context, command string) map[string]models.CommandResult {
	return e.RunOnNodes(ctx, e.registry.IDs(), command)
}
