// Package async provides utilities for parallel task execution.
//
// This package contains generic helpers for running multiple operations
// concurrently and collecting their results. It's used for best-effort
// workflows such as diagnostics collection, where one failing task must
// not stop its siblings.
package async

import (
	"context"
	"sync"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Gather executes all tasks in parallel and waits for every one to finish.
// A failing task never cancels the others; instead each failure is recorded
// under its task name so callers can degrade per-result. The returned map
// contains entries only for tasks that failed.
//
// Example:
//
//	errs := async.Gather(ctx, []async.Task{
//	    {Name: "status", Func: fetchStatus},
//	    {Name: "logs", Func: fetchLogs},
//	})
//	if errs["logs"] != nil {
//	    // logs unavailable, status may still be usable
//	}
func Gather(ctx context.Context, tasks []Task) map[string]error {
	errs := make(map[string]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := task.Func(ctx); err != nil {
				mu.Lock()
				errs[task.Name] = err
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errs
}
