package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokprobe/internal/engine"
	"github.com/samcharles93/tokprobe/internal/logger"
)

func listModelsCmd() *cli.Command {
	return &cli.Command{
		Name:    "list-models",
		Aliases: []string{"ls", "models"},
		Usage:   "List model directories under the models path",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "models-path",
				Aliases:     []string{"path"},
				Usage:       "directory searched for models",
				Destination: &modelsPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, LoadConfig())

			dir := resolveModelsDir(modelsPath)
			if dir == "" {
				return cli.Exit("error: --models-path is required unless "+envModelsDir+" is set", 1)
			}
			models, err := engine.Discover(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(models) == 0 {
				log.Info("no models found", "path", dir)
				return nil
			}

			_, _ = headerColor.Printf("Models in %s:\n\n", dir)
			for _, m := range models {
				size := formatModelSize(m.Size)
				cfg, err := engine.ReadConfig(filepath.Join(m.Path, engine.ConfigFile))
				if err != nil {
					fmt.Printf("  %-40s %8s  ", m.Name, size)
					_, _ = faintColor.Println("(unreadable config)")
					continue
				}
				fmt.Printf("  %-40s %8s  (vocab %d, hidden %d, ctx %d)\n",
					m.Name, size, cfg.VocabSize, cfg.HiddenSize, cfg.ContextLength)
			}
			fmt.Printf("\n%d model(s) found\n", len(models))
			return nil
		},
	}
}
