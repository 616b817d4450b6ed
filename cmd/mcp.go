package cmd

import (
	"github.com/huangsam/idescope/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [dataset]...",
	Short: "Start the idescope MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents build channel tables, filter channels and resolve time expressions. Datasets given here are the defaults for tools that take none.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, newRuntime())
	},
}
