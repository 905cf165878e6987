package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokprobe/internal/engine"
	"github.com/samcharles93/tokprobe/internal/logger"
)

func toyCmd() *cli.Command {
	var (
		out     string
		hidden  int64
		ctxLen  int64
		seed    int64
	)

	return &cli.Command{
		Name:  "toy",
		Usage: "Write the random-weight toy model to a directory for smoke tests",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output model directory",
				Required:    true,
				Destination: &out,
			},
			&cli.Int64Flag{
				Name:        "hidden",
				Usage:       "hidden size",
				Value:       32,
				Destination: &hidden,
			},
			&cli.Int64Flag{
				Name:        "context",
				Usage:       "context window",
				Value:       512,
				Destination: &ctxLen,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "weight seed",
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := engine.ToyConfig{Hidden: int(hidden), Context: int(ctxLen), Seed: seed}
			if err := engine.ExportToy(out, cfg); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			logger.FromContext(ctx).Info("toy model written", "path", out)
			return nil
		},
	}
}
