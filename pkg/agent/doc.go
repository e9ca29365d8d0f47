// Package agent runs the reasoning/execution cycle that connects a language
// model to MCP-provided tools.
//
// Invariants:
// - Turns for the same thread are serialized through a commandqueue lane.
// - History is append-only within a turn; the checkpoint store is written
//   only when a turn completes with a final answer.
// - Tool requests execute strictly in the order the model emitted them, one
//   at a time, producing exactly one tool-result message each.
//
// Usage:
//
//	orch, _ := agent.NewOrchestrator(agent.Config{...})
//	result, _ := orch.Run(ctx, "thread-1", "What is the capital of France?")
//	fmt.Println(result.Answer)
package agent
