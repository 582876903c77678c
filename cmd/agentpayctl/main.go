package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/omniagentpay/omniagentpay-go/agentpay"
	"github.com/omniagentpay/omniagentpay-go/bridge"
	"github.com/omniagentpay/omniagentpay-go/internal/install"
)

func main() {
	app := &cli.App{
		Name:  "agentpayctl",
		Usage: "drive the omniagentpay worker process from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "worker",
				Usage: "Path to the worker executable. Defaults to the standard candidate locations.",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Minimum log level. One of [debug,info,warn,error].",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "call",
				Usage:     "send a single request to the worker and print its result",
				ArgsUsage: "<method> [params-json]",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() < 1 {
						return fmt.Errorf("usage: call <method> [params-json]")
					}
					method := ctx.Args().Get(0)
					var params any
					if ctx.NArg() > 1 {
						if err := json.Unmarshal([]byte(ctx.Args().Get(1)), &params); err != nil {
							return fmt.Errorf("parsing params: %w", err)
						}
					}

					client, err := newClient(ctx)
					if err != nil {
						return err
					}
					defer client.Close()

					raw, err := client.Bridge().Send(ctx.Context, method, params)
					if err != nil {
						return err
					}
					fmt.Println(string(raw))
					return nil
				},
			},
			{
				Name:  "health",
				Usage: "check that the worker starts and responds",
				Action: func(ctx *cli.Context) error {
					client, err := newClient(ctx)
					if err != nil {
						return err
					}
					defer client.Close()

					health, err := client.Health(ctx.Context)
					if err != nil {
						return err
					}
					fmt.Printf("%s (worker version %s)\n", health.Status, health.Version)
					return nil
				},
			},
			{
				Name:      "install",
				Usage:     "download and install the worker executable",
				ArgsUsage: "<version>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return fmt.Errorf("usage: install <version>")
					}
					logger, err := buildLogger(ctx)
					if err != nil {
						return err
					}
					installer := &install.Installer{Logger: logger.Sugar()}
					path, err := installer.Install(ctx.Context, ctx.Args().Get(0))
					if err != nil {
						return err
					}
					fmt.Printf("installed worker to %s\n", path)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildLogger(ctx *cli.Context) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(ctx.String("log-level")); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func newClient(ctx *cli.Context) (*agentpay.Client, error) {
	logger, err := buildLogger(ctx)
	if err != nil {
		return nil, err
	}
	opts := []bridge.Option{bridge.WithLogger(logger)}
	if worker := ctx.String("worker"); worker != "" {
		opts = append(opts, bridge.WithWorkerPath(worker))
	}
	return agentpay.New(opts...)
}
