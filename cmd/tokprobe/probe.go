package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/probe"
)

func probeCmd() *cli.Command {
	var (
		prompt  string
		targets string
		topK    int64
		asJSON  bool
	)

	return &cli.Command{
		Name:  "probe",
		Usage: "Print the probability of each target token after a prompt",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "prompt text",
				Value:       "Hello my name is",
				Destination: &prompt,
			},
			&cli.StringFlag{
				Name:        "target-chars",
				Aliases:     []string{"t"},
				Usage:       "comma-separated target strings (required)",
				Destination: &targets,
			},
			&cli.Int64Flag{
				Name:        "top-k",
				Usage:       "also print the k most likely next tokens",
				Destination: &topK,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the result as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyProbeConfig(cmd, LoadConfig(), &topK)
			if targets == "" {
				return cli.Exit("error: -t/--target-chars is required and must not be empty", 1)
			}

			m, err := loadModel(ctx, !asJSON)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer m.Close()

			req := probe.Request{Prompt: prompt, Targets: targets, TopK: int(topK)}
			if err := runProbe(ctx, os.Stdout, probe.NewService(m, logger.FromContext(ctx)), req, asJSON); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), exitCode(err))
			}
			return nil
		},
	}
}

func runProbe(ctx context.Context, w io.Writer, svc *probe.Service, req probe.Request, asJSON bool) error {
	res, err := svc.Probe(ctx, req)
	if err != nil {
		return err
	}
	if asJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	_, _ = faintColor.Fprintf(os.Stderr, "prompt: %d tokens\n", res.PromptTokens)
	return probe.FormatText(w, res)
}

// exitCode separates caller mistakes (2) from engine failures (1).
func exitCode(err error) int {
	if errors.Is(err, probe.ErrInvalidRequest) || errors.Is(err, probe.ErrPromptTooLong) {
		return 2
	}
	return 1
}
