package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/version"
)

func main() {
	_ = godotenv.Load()

	app := &cli.Command{
		Name:    "tokprobe",
		Usage:   "Report next-token probabilities for target strings",
		Version: version.String(),
		Flags:   loggingFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			applyLogConfig(cmd, LoadConfig())
			level := logLevel
			if debug {
				level = "debug"
			}
			return logger.WithContext(ctx, logger.FromOptions(os.Stderr, logFormat, level)), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			probeCmd(),
			serveCmd(),
			mcpCmd(),
			listModelsCmd(),
			toyCmd(),
			versionCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
