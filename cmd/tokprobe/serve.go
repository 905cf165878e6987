package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tokprobe/internal/api"
	"github.com/samcharles93/tokprobe/internal/engine"
	"github.com/samcharles93/tokprobe/internal/logger"
	"github.com/samcharles93/tokprobe/internal/probe"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve probes over HTTP (POST /props, POST /shutdown)",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, LoadConfig(), &addr)

			m, err := loadModel(ctx, true)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			return runServe(ctx, addr, readTimeout, m)
		},
	}
}

// runServe serves m on addr until ctx is cancelled or POST /shutdown is
// received, then closes m. It owns m from the moment it is called.
func runServe(ctx context.Context, addr string, readTimeout time.Duration, m *engine.Model) error {
	log := logger.FromContext(ctx)
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("close model", "error", err)
		}
	}()

	// POST /shutdown cancels serveCtx; Start then drains and returns.
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := api.NewServer(probe.NewService(m, log), log, cancel)
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	server.Register(e)

	log.Info("starting server", "address", addr)
	sc := echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = readTimeout
			return nil
		},
	}
	if err := sc.Start(serveCtx, e); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}
