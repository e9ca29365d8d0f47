// Package mcpclient maintains the session to the MCP tool server.
//
// Invariants:
// - One connection serves every operation (discovery, prompts, resources,
//   tool calls); all requests funnel through a single-concurrency
//   commandqueue lane, so at most one call is ever in flight.
// - An empty tool listing is a valid state, not a failure.
// - Remote failures after a successful connect are returned to callers and
//   never tear the session down.
package mcpclient
