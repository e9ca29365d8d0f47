package shell

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/shlex"
	"github.com/mark3labs/mcp-go/mcp"
)

// listResources prints the server's resources and rebuilds the positional
// index. The previous index is discarded wholesale: positions always refer
// to the listing on screen.
func (sh *Shell) listResources(ctx context.Context) {
	resources, err := sh.session.ListResources(ctx)
	if err != nil {
		fmt.Fprintf(sh.out, "Failed to list resources: %v\n", err)
		return
	}

	sh.lastResources = resources
	sh.resourceIndex = make(map[string]string, len(resources))

	if len(resources) == 0 {
		fmt.Fprintln(sh.out, "No resources found on the server.")
		return
	}

	fmt.Fprintln(sh.out, "\nAvailable resources:")
	for i, r := range resources {
		sh.resourceIndex[strconv.Itoa(i+1)] = r.Name
		fmt.Fprintf(sh.out, "[%d] %s\n", i+1, r.Name)
	}
	fmt.Fprintln(sh.out, "\nUse: /resource <name|index> to view its content.")
}

// readResource resolves a /resource identifier against the last listing and
// prints the text blocks of the resource's content in order.
//
// Without a prior /resources listing there is nothing to resolve against and
// every identifier reports not found.
func (sh *Shell) readResource(ctx context.Context, command string) {
	// Shell-style tokenization so quoted names may contain spaces
	parts, err := shlex.Split(command)
	if err != nil {
		fmt.Fprintf(sh.out, "Could not parse command: %v\n", err)
		return
	}
	if len(parts) < 2 {
		fmt.Fprintln(sh.out, "Usage: /resource <name|index>")
		return
	}

	resourceID := parts[1]

	// A 1-based position from the last listing resolves to its name;
	// anything else is taken as a name directly.
	resourceName := resourceID
	if name, ok := sh.resourceIndex[resourceID]; ok {
		resourceName = name
	}

	var match *mcp.Resource
	for i := range sh.lastResources {
		if sh.lastResources[i].Name == resourceName {
			match = &sh.lastResources[i]
			break
		}
	}
	if match == nil {
		fmt.Fprintf(sh.out, "Resource '%s' not found.\n", resourceID)
		return
	}

	result, err := sh.session.ReadResource(ctx, match.URI)
	if err != nil {
		fmt.Fprintf(sh.out, "Resource fetch failed: %v\n", err)
		return
	}

	for _, content := range result.Contents {
		if text, ok := mcp.AsTextResourceContents(content); ok {
			fmt.Fprintln(sh.out, "\n=== Resource Text ===")
			fmt.Fprintln(sh.out, text.Text)
		}
	}
}
