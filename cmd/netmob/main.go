// netmob builds tile to IRIS correspondences and reduces the NetMob
// mobile-traffic corpus to night-time consumption tables.
//
// Usage:
//
//	netmob match --city Paris --city Lyon
//	netmob aggregate --city Lyon --from 20190401 --to 20190407
//	netmob night --kind UL_AND_DL --level iris
//	netmob series --city Lyon
//	netmob profile --city Lyon --service Netflix
//	netmob cube --city Lyon --day 20190401
//	netmob service-night --service Netflix
//	netmob inventory --level tile --city Lyon
//	netmob serve
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"netmobcli/internal/app"
	"netmobcli/internal/config"
	"netmobcli/internal/infrastructure"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

func newApp() *cli.App {
	return &cli.App{
		Name:    config.AppName,
		Usage:   "NetMob traffic correspondence and night-window reductions",
		Version: config.AppVersion,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{config.EnvPrefix + "_CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{config.EnvPrefix + "_LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			matchCommand(),
			aggregateCommand(),
			nightCommand(),
			seriesCommand(),
			profileCommand(),
			cubeCommand(),
			serviceNightCommand(),
			inventoryCommand(),
			serveCommand(),
		},
	}
}

// loadConfig reads the config file named by --config, or searches the
// default locations, then applies the global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// setup builds the application for one command. override adjusts the
// config before validation and wiring.
func setup(c *cli.Context, override func(*config.Config)) (context.Context, *app.Application, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := infrastructure.EnsureRunID(c.Context)
	logger.InfoContext(ctx, "command starting",
		slog.String("command", c.Command.Name),
		slog.String("version", config.AppVersion))

	application, err := app.NewApplication(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return ctx, application, nil
}

// finish closes the application and logs the outcome of the command.
func finish(ctx context.Context, application *app.Application, cmdErr error) error {
	if err := application.Close(context.WithoutCancel(ctx)); err != nil {
		application.Logger.WarnContext(ctx, "shutdown incomplete", slog.String("error", err.Error()))
	}
	if cmdErr != nil {
		application.Logger.ErrorContext(ctx, "command failed", slog.String("error", cmdErr.Error()))
		return cmdErr
	}
	application.Logger.InfoContext(ctx, "command complete")
	return nil
}
