// Package mcpadapter exposes token probes as MCP tools.
package mcpadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/probe"
)

// ToolName is the name the probe tool is registered under.
const ToolName = "probe_tokens"

// ProbeInput is the MCP tool input schema (matches HTTP API field names).
type ProbeInput struct {
	Prompt      string `json:"prompt" jsonschema:"text the model conditions on"`
	TargetChars string `json:"target_chars" jsonschema:"comma-separated target strings to score"`
	TopK        int    `json:"top_k,omitempty" jsonschema:"also report the k most likely next tokens (0-100)"`
}

// Prober runs one probe. *probe.Service implements it.
type Prober interface {
	Probe(ctx context.Context, req probe.Request) (*probe.Result, error)
}

// NewServer returns an MCP server with the probe tool registered.
func NewServer(prober Prober, version string, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tokprobe",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Report the probability the loaded model assigns to each token of the comma-separated targets, at the position right after the prompt",
	}, NewProbeHandler(prober, log))
	return server
}

// NewProbeHandler returns a tool handler that uses the given prober.
// Pass the returned function to mcp.AddTool.
func NewProbeHandler(prober Prober, log logger.Logger) func(context.Context, *mcp.CallToolRequest, ProbeInput) (*mcp.CallToolResult, probe.Result, error) {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx context.Context, req *mcp.CallToolRequest, input ProbeInput) (*mcp.CallToolResult, probe.Result, error) {
		return ProbeTokens(ctx, prober, log.With("request_id", uuid.NewString()), input)
	}
}

// ProbeTokens runs a probe and returns the result as structured output.
func ProbeTokens(ctx context.Context, prober Prober, log logger.Logger, input ProbeInput) (*mcp.CallToolResult, probe.Result, error) {
	start := time.Now()
	res, err := prober.Probe(ctx, probe.Request{
		Prompt:  input.Prompt,
		Targets: input.TargetChars,
		TopK:    input.TopK,
	})
	if err != nil {
		log.Warn("probe tool failed", "error", err)
		return nil, probe.Result{}, err
	}
	log.Debug("probe tool done", "tokens", len(res.Tokens), "elapsed", time.Since(start))
	return nil, *res, nil
}
