// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/idescope/core"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the idescope MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, rt core.Runtime) *server.MCPServer {
	s := server.NewMCPServer(
		"idescope Channel Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		rt:      rt,
	}

	// --- 1. Tool: get_channel_table ---
	s.AddTool(mcp.NewTool("get_channel_table",
		mcp.WithDescription("Summarize the channels of one or more recordings over a time window: first and last sample, sample count and measured rate."),
		mcp.WithArray("datasets", mcp.Description("Dataset manifest paths (defaults to the datasets the server was started with)."), mcp.WithStringItems()),
		mcp.WithString("types", mcp.Description("Measurement type filter such as 'acc temp -light' or '*'.")),
		mcp.WithString("start", mcp.Description("Window start: seconds, [[D:]H:]M:S, or an RFC 3339 timestamp.")),
		mcp.WithString("end", mcp.Description("Window end, in the same forms as start.")),
		mcp.WithBoolean("whole", mcp.Description("Summarize whole channels instead of subchannels.")),
	), h.handleGetChannelTable)

	// --- 2. Tool: filter_channels ---
	s.AddTool(mcp.NewTool("filter_channels",
		mcp.WithDescription("List the channels of a recording whose measurement type matches a filter."),
		mcp.WithString("dataset", mcp.Description("Dataset manifest path (defaults to the first server dataset).")),
		mcp.WithString("types", mcp.Description("Measurement type filter such as 'acc temp -light' or '*'.")),
		mcp.WithBoolean("whole", mcp.Description("List whole channels instead of subchannels.")),
	), h.handleFilterChannels)

	// --- 3. Tool: list_measurement_types ---
	s.AddTool(mcp.NewTool("list_measurement_types",
		mcp.WithDescription("List the registered measurement types and their abbreviations."),
		mcp.WithString("types", mcp.Description("Optional filter narrowing the list.")),
	), h.handleListMeasurementTypes)

	// --- 4. Tool: parse_time ---
	s.AddTool(mcp.NewTool("parse_time",
		mcp.WithDescription("Resolve a time expression to microseconds."),
		mcp.WithString("expr", mcp.Description("Seconds, [[D:]H:]M:S, or an RFC 3339 timestamp."), mcp.Required()),
		mcp.WithString("ref", mcp.Description("RFC 3339 reference time that timestamps are measured from.")),
	), h.handleParseTime)

	return s
}

// StartMCPServer starts the idescope MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, rt core.Runtime) error {
	s := NewMCPServer(baseCfg, rt)
	return server.ServeStdio(s)
}
