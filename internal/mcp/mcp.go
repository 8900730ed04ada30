// Package mcp provides the crashsym MCP server, registering the symbol
// tools and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/deixis/crashsym"
	"github.com/deixis/crashsym/internal/config"
	"github.com/deixis/crashsym/internal/report"
	"github.com/deixis/crashsym/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// Jars resolves the buildtools jar and reports where it is kept.
// Implemented by buildtools.Fetcher.
type Jars interface {
	workflow.ToolResolver
	Path() string
}

// Workspace is the state a workspace root's .crashsym.yaml yields.
type Workspace struct {
	Dir        string // relative symbol file paths resolve against it
	Config     *config.Config
	ConfigPath string
	Runner     workflow.CommandRunner
	Jars       Jars
	CacheRoot  string // root for every run's cache location
}

// WorkspaceLoader builds the Workspace rooted at dir.
type WorkspaceLoader func(dir string) (*Workspace, error)

// LoadWorkspace reads .crashsym.yaml from dir or its parents and builds
// the runner, jar fetcher and cache root it configures.
func LoadWorkspace(dir string) (*Workspace, error) {
	loaded, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	env, err := workflow.NewEnvironment(dir, loaded, os.Getenv)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		Dir:        env.Dir,
		Config:     env.Config,
		ConfigPath: env.ConfigPath,
		Runner:     env.Runner,
		Jars:       env.Jars,
		CacheRoot:  env.CacheRoot,
	}, nil
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	store report.Store
	load  WorkspaceLoader // nil keeps ws for the whole server lifetime

	mu sync.Mutex
	ws *Workspace
}

// NewServer creates an MCP server with all crashsym tools registered.
// ws serves tool calls until a client advertises a workspace root, which
// is then loaded with load.
func NewServer(ws *Workspace, load WorkspaceLoader, store report.Store) *mcp.Server {
	h := &handler{
		store: store,
		load:  load,
		ws:    ws,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "crashsym", Version: crashsym.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "crashlytics_environment",
		Description: "Report the java runtime, buildtools jar and symbol cache used for uploads.",
	}, h.environmentHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "crashlytics_symbols_upload",
		Description: `Generate native symbols for unstripped libraries and upload them to Crashlytics.

Symbols are generated for each file in order, then uploaded in one call. The run stops at the
first failing file. With dry_run=true, symbols are generated but not uploaded.
Archives (.zip, .7z, .tar.gz, .tar.xz, .xz) are expanded first.
Results are stored for drill-down via crashlytics_symbols_inspect.`,
	}, h.uploadHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "crashlytics_symbols_inspect",
		Description: `Drill into the steps of a crashlytics_symbols_upload run.

Use the run_id from the upload result. Pass symbol_file to only show the steps for one
library; otherwise all steps are returned with the buildtools output they produced.`,
	}, h.inspectHandler)

	return s
}

// workspace returns the current workspace.
func (h *handler) workspace() *Workspace {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ws
}

// updateWorkspaceFromRoots queries the client for MCP roots and reloads
// the workspace from the first file root. It is called during session
// initialization, before any tool calls.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	if h.load == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}

	ws, err := h.load(filepath.FromSlash(u.Path))
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.ws = ws
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
