package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/mcpadapter"
	"github.com/samcharles93/tokprobe/internal/probe"
	"github.com/samcharles93/tokprobe/internal/version"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the probe_tokens tool over MCP stdio",
		Flags: commonModelFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, LoadConfig())

			// stdout carries the protocol, so no progress bar.
			m, err := loadModel(ctx, false)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			defer m.Close()

			server := mcpadapter.NewServer(probe.NewService(m, log), version.String(), log)
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				// EOF / "server is closing" is expected when stdin closes.
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
					log.Debug("mcp server stopped", "reason", err)
					return nil
				}
				return err
			}
			return nil
		},
	}
}
