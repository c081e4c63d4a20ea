// Package cli contains the hexviz command line.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	flagConfig  = "config"
	flagDebug   = "debug"
	flagBind    = "bind"
	flagURDF    = "urdf"
	flagConnect = "connect"
	flagSeed    = "seed"
	flagTree    = "tree"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "hexviz",
		Usage:           "visualize a hexapod from its URDF and live telemetry",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "load the robot and serve the dashboard API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagBind,
						Usage: "listen on `ADDRESS` instead of the configured web.bind_address",
					},
					&cli.PathFlag{
						Name:  flagURDF,
						Usage: "load the robot description from `FILE`",
					},
					&cli.StringFlag{
						Name:  flagConnect,
						Usage: "connect to the robot telemetry at `HOST[:PORT]` on startup",
					},
				},
				Action: ServeAction,
			},
			{
				Name:      "inspect",
				Usage:     "parse a URDF file and print its joints and links",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagTree,
						Usage: "also build the model and print the frame tree",
					},
				},
				Action: InspectAction,
			},
			{
				Name:  "simulate",
				Usage: "run a telemetry simulator that answers like the robot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagBind,
						Value: "0.0.0.0:8765",
						Usage: "listen on `ADDRESS`",
					},
					&cli.Int64Flag{
						Name:  flagSeed,
						Usage: "seed for the simulated power dips; 0 picks one from the clock",
					},
				},
				Action: SimulateAction,
			},
		},
	}
}
