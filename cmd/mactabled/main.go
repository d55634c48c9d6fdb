package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/iamBelugaa/mactable/pkg/logger"
)

const service = "mactabled"

var (
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level of the JSON log written to stderr (debug, info, warn, error)",
		Value: "warn",
	}
	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "disable coloured output",
	}
)

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:   service,
		Usage:  "exercise a fixed-capacity MAC address table",
		Writer: stdout,
		Flags:  []cli.Flag{logLevelFlag, noColorFlag},
		Before: func(ctx *cli.Context) error {
			if ctx.Bool(noColorFlag.Name) {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			commandDemo,
			commandParse,
			commandReplay,
		},
	}
}

// newLogger builds the command logger from the global flags.
func newLogger(ctx *cli.Context) (*zap.SugaredLogger, error) {
	level, err := logger.ParseLevel(ctx.String(logLevelFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", logLevelFlag.Name, err)
	}
	return logger.NewWithLevel(service, level), nil
}

func main() {
	color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
