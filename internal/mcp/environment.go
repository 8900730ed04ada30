package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/deixis/crashsym/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type environmentParams struct{}

func (h *handler) environmentHandler(ctx context.Context, req *mcp.CallToolRequest, _ environmentParams) (*mcp.CallToolResult, any, error) {
	ws := h.workspace()
	cfg := ws.Config

	var b strings.Builder

	e := &workflow.Engine{Java: cfg.JavaBinary(), Runner: ws.Runner}
	if java, err := e.LookupJava(); err != nil {
		fmt.Fprintf(&b, "Java: %s (unavailable)\n", cfg.JavaBinary())
		fmt.Fprintf(&b, "%v\n", err)
	} else {
		version, err := e.JavaVersion(ctx)
		switch {
		case err != nil:
			fmt.Fprintf(&b, "Java: %s (version check failed: %v)\n", java, err)
		case version == "":
			fmt.Fprintf(&b, "Java: %s (unknown version)\n", java)
		default:
			fmt.Fprintf(&b, "Java: %s (%s)\n", java, version)
		}
	}

	jar := ws.Jars.Path()
	if _, err := os.Stat(jar); err == nil {
		fmt.Fprintf(&b, "Buildtools: %s\n", jar)
	} else {
		fmt.Fprintf(&b, "Buildtools: %s (not downloaded yet)\n", jar)
	}
	fmt.Fprintf(&b, "Cache root: %s\n", ws.CacheRoot)

	if ws.Dir != "" {
		fmt.Fprintf(&b, "Workspace: %s\n", ws.Dir)
	}
	if ws.ConfigPath != "" {
		fmt.Fprintf(&b, "Config: %s\n", ws.ConfigPath)
	}
	if cfg.App != "" {
		fmt.Fprintf(&b, "Default app: %s\n", cfg.App)
	}

	return textResult(b.String())
}
