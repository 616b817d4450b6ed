package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/idescope/core"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	rt      core.Runtime
}

// requestConfig clones the base config and applies the selection arguments of request.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateQuery(cfg, h.rt.Registry(),
		request.GetString("types", ""),
		request.GetString("start", ""),
		request.GetString("end", ""),
	)
	if err != nil {
		return nil, err
	}
	cfg.Whole = request.GetBool("whole", cfg.Whole)
	return cfg, nil
}

// jsonResult encodes v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetChannelTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err)), nil
	}
	if paths := request.GetStringSlice("datasets", nil); len(paths) > 0 {
		cfg.DatasetPaths = paths
	}

	tables, err := core.GetChannelTableResults(core.WithSuppressHeader(ctx), cfg, h.rt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(tables)
}

func (h *toolHandler) handleFilterChannels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err)), nil
	}
	if p := request.GetString("dataset", ""); p != "" {
		cfg.DatasetPaths = []string{p}
	} else if len(cfg.DatasetPaths) > 1 {
		cfg.DatasetPaths = cfg.DatasetPaths[:1]
	}

	channels, err := core.GetChannelsResults(ctx, cfg, h.rt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("channel listing failed: %v", err)), nil
	}
	return jsonResult(channels)
}

func (h *toolHandler) handleListMeasurementTypes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid type filter: %v", err)), nil
	}

	types, err := core.GetTypesResults(cfg, h.rt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("type listing failed: %v", err)), nil
	}
	return jsonResult(types)
}

func (h *toolHandler) handleParseTime(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := core.ParseTimeExpr(expr, request.GetString("ref", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid time: %v", err)), nil
	}
	return jsonResult(result)
}
