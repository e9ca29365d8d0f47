// Package shell implements the interactive command loop.
//
// Plain input becomes a conversational turn through the orchestrator.
// Slash commands go straight to the MCP session: /prompts and /resources
// list, /prompt invokes a named prompt (re-entering the orchestrator with
// the rendered text), /resource reads a resource by name or by its 1-based
// position in the last listing.
//
// Command errors print and return control to the loop; nothing in here
// terminates the session.
package shell
