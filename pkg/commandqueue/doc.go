// Package commandqueue provides lane-based task execution with FIFO ordering per lane.
//
// Invariants:
// - Tasks in the same lane execute in FIFO order.
// - A lane with concurrency 1 never has two tasks in flight, which is how the
//   shared MCP connection and per-thread orchestration are serialized.
// - Tasks in different lanes may execute concurrently.
//
// Usage:
//
//	queue := commandqueue.New()
//	defer queue.Close()
//	result, err := queue.Enqueue("mcp", func(ctx context.Context) (interface{}, error) {
//		return "ok", nil
//	})
package commandqueue
