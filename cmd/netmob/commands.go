package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"netmobcli/internal/catalog"
	"netmobcli/internal/config"
	"netmobcli/internal/files"
	"netmobcli/internal/services"
)

func cityFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "city",
		Usage: "City to process, repeatable (default: traffic.cities, then every city)",
	}
}

func trafficFlags() []cli.Flag {
	return []cli.Flag{
		cityFlag(),
		&cli.StringFlag{
			Name:  "kind",
			Usage: "Traffic kind (UL, DL, UL_AND_DL, USERS)",
		},
		&cli.StringFlag{
			Name:  "level",
			Usage: "Geographic level (tile, iris)",
		},
		&cli.StringSliceFlag{
			Name:  "service",
			Usage: "Service to load, repeatable (default: traffic.services, then every service of the kind)",
		},
		&cli.BoolFlag{
			Name:  "missing-report",
			Usage: "Write a per-slice missing-value report next to the outputs",
		},
	}
}

// trafficOverride applies the traffic flags that were set on the command line.
func trafficOverride(c *cli.Context) func(*config.Config) {
	return func(cfg *config.Config) {
		if c.IsSet("kind") {
			cfg.Traffic.Kind = c.String("kind")
		}
		if c.IsSet("level") {
			cfg.Traffic.Level = c.String("level")
		}
		if c.IsSet("missing-report") {
			cfg.Traffic.MissingReport = c.Bool("missing-report")
		}
		if services := c.StringSlice("service"); len(services) > 0 {
			// the series sums exactly the services asked for
			cfg.Traffic.Services = services
			cfg.Traffic.SeriesSubset = services
		}
	}
}

// cities resolves the --city flag against the configured default list.
func cities(c *cli.Context, cfg *config.Config) []string {
	if names := c.StringSlice("city"); len(names) > 0 {
		return names
	}
	if len(cfg.Traffic.Cities) > 0 {
		return cfg.Traffic.Cities
	}
	return catalog.CityNames()
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Build and persist the tile to IRIS correspondence of cities",
		Flags: []cli.Flag{
			cityFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Rebuild correspondences that are already stored",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, application, err := setup(c, func(cfg *config.Config) {
				if c.IsSet("force") {
					cfg.Matching.ForceRebuild = c.Bool("force")
				}
			})
			if err != nil {
				return err
			}

			summaries, err := application.Services.Matching.MatchCities(ctx, cities(c, application.Config))
			if err == nil {
				err = printJSON(c, summaries)
			}
			return finish(ctx, application, err)
		},
	}
}

func aggregateCommand() *cli.Command {
	return &cli.Command{
		Name:  "aggregate",
		Usage: "Sum tile-level counter files into IRIS-level files",
		Flags: []cli.Flag{
			cityFlag(),
			&cli.StringSliceFlag{
				Name:  "service",
				Usage: "Service to aggregate, repeatable (default: every service)",
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "First day, YYYYMMDD (default: start of the observation window)",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Last day, YYYYMMDD (default: end of the observation window)",
			},
		},
		Action: func(c *cli.Context) error {
			days, err := dayRange(c.String("from"), c.String("to"))
			if err != nil {
				return err
			}

			ctx, application, err := setup(c, nil)
			if err != nil {
				return err
			}

			stats, err := application.Services.Traffic.Aggregate(ctx,
				cities(c, application.Config), c.StringSlice("service"), days)
			if err == nil {
				err = printJSON(c, stats)
			}
			return finish(ctx, application, err)
		},
	}
}

// dayRange turns optional YYYYMMDD bounds into the observed days they cover.
func dayRange(from, to string) ([]time.Time, error) {
	start, end := catalog.WindowStart, catalog.WindowEnd
	if from != "" {
		day, err := time.Parse(config.DayLayout, from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		start = day
	}
	if to != "" {
		day, err := time.Parse(config.DayLayout, to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		end = day
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--to %s is before --from %s", end.Format(config.DayLayout), start.Format(config.DayLayout))
	}
	days := files.FilterDaysByRange(catalog.Days(), start, end)
	if len(days) == 0 {
		return nil, fmt.Errorf("no observed day between %s and %s", start.Format(config.DayLayout), end.Format(config.DayLayout))
	}
	return days, nil
}

func nightCommand() *cli.Command {
	return &cli.Command{
		Name:  "night",
		Usage: "Write night-window consumption per location and service",
		Flags: trafficFlags(),
		Action: func(c *cli.Context) error {
			ctx, application, err := setup(c, trafficOverride(c))
			if err != nil {
				return err
			}

			results, err := application.Services.Traffic.Night(ctx, cities(c, application.Config))
			if err == nil {
				err = printJSON(c, results)
			}
			return finish(ctx, application, err)
		},
	}
}

type seriesResult struct {
	City      string `json:"city"`
	Locations int    `json:"locations"`
	Instants  int    `json:"instants"`
}

func seriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "series",
		Usage: "Write the noise-filtered time series of each location",
		Flags: trafficFlags(),
		Action: func(c *cli.Context) error {
			ctx, application, err := setup(c, trafficOverride(c))
			if err != nil {
				return err
			}

			var results []seriesResult
			for _, city := range cities(c, application.Config) {
				table, err := application.Services.Traffic.Series(ctx, city)
				if err != nil {
					return finish(ctx, application, err)
				}
				results = append(results, seriesResult{City: city, Locations: len(table.Rows), Instants: len(table.Columns)})
			}
			return finish(ctx, application, printJSON(c, results))
		},
	}
}

type profileResult struct {
	City      string `json:"city"`
	Locations int    `json:"locations"`
	Times     int    `json:"times"`
	Services  int    `json:"services"`
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Write the time-of-day night profile of each location and service",
		Flags: trafficFlags(),
		Action: func(c *cli.Context) error {
			ctx, application, err := setup(c, trafficOverride(c))
			if err != nil {
				return err
			}

			var results []profileResult
			for _, city := range cities(c, application.Config) {
				p, err := application.Services.Traffic.Profile(ctx, city)
				if err != nil {
					return finish(ctx, application, err)
				}
				results = append(results, profileResult{
					City:      city,
					Locations: len(p.Locations),
					Times:     len(p.Times),
					Services:  len(p.Services),
				})
			}
			return finish(ctx, application, printJSON(c, results))
		},
	}
}

func cubeCommand() *cli.Command {
	return &cli.Command{
		Name:  "cube",
		Usage: "Write the raw cube of a city summed over its services, one row per location",
		Flags: append(trafficFlags(), &cli.StringFlag{
			Name:  "day",
			Usage: "Single day to export, YYYYMMDD (default: every observed day)",
		}),
		Action: func(c *cli.Context) error {
			var day time.Time
			if v := c.String("day"); v != "" {
				d, err := time.Parse(config.DayLayout, v)
				if err != nil {
					return fmt.Errorf("invalid --day %q: %w", v, err)
				}
				day = d
			}

			ctx, application, err := setup(c, trafficOverride(c))
			if err != nil {
				return err
			}

			var results []services.CubeResult
			for _, city := range cities(c, application.Config) {
				r, err := application.Services.Traffic.Export(ctx, city, day)
				if err != nil {
					return finish(ctx, application, err)
				}
				results = append(results, r)
			}
			return finish(ctx, application, printJSON(c, results))
		},
	}
}

func serviceNightCommand() *cli.Command {
	return &cli.Command{
		Name:  "service-night",
		Usage: "Write the night totals of one service over several cities to one table",
		Flags: []cli.Flag{
			cityFlag(),
			&cli.StringFlag{
				Name:     "service",
				Usage:    "Service to reduce",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Traffic kind (UL, DL, UL_AND_DL, USERS)",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, application, err := setup(c, func(cfg *config.Config) {
				if c.IsSet("kind") {
					cfg.Traffic.Kind = c.String("kind")
				}
			})
			if err != nil {
				return err
			}

			result, err := application.Services.Traffic.ServiceNight(ctx, c.String("service"), cities(c, application.Config))
			if err == nil {
				err = printJSON(c, result)
			}
			return finish(ctx, application, err)
		},
	}
}

type inventoryEntry struct {
	City        string   `json:"city"`
	Service     string   `json:"service"`
	MissingDays []string `json:"missing_days,omitempty"`
}

func inventoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "inventory",
		Usage: "List the services of each city and the observed days without a directory",
		Flags: []cli.Flag{
			cityFlag(),
			&cli.StringFlag{
				Name:  "level",
				Value: string(catalog.LevelTile),
				Usage: "Geographic level (tile, iris)",
			},
		},
		Action: func(c *cli.Context) error {
			level, err := catalog.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}

			ctx, application, err := setup(c, nil)
			if err != nil {
				return err
			}

			var entries []inventoryEntry
			for _, city := range cities(c, application.Config) {
				services, err := application.Discovery.Services(level, city)
				if err != nil {
					return finish(ctx, application, err)
				}
				for _, service := range services {
					missing, err := application.Discovery.MissingDays(level, city, service)
					if err != nil {
						return finish(ctx, application, err)
					}
					entry := inventoryEntry{City: city, Service: service}
					for _, day := range missing {
						entry.MissingDays = append(entry.MissingDays, day.Format(config.DayLayout))
					}
					entries = append(entries, entry)
				}
			}
			return finish(ctx, application, printJSON(c, entries))
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve correspondences, health and metrics over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, application, err := setup(c, func(cfg *config.Config) {
				if c.IsSet("port") {
					cfg.Server.Port = c.Int("port")
				}
			})
			if err != nil {
				return err
			}
			return finish(ctx, application, application.Run(ctx))
		},
	}
}
