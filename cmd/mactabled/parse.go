package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/iamBelugaa/mactable/pkg/macaddr"
)

var commandParse = &cli.Command{
	Name:      "parse",
	Usage:     "validate addresses and print them in canonical form",
	ArgsUsage: "<address> [<address>...]",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() == 0 {
			return fmt.Errorf("at least one address is required")
		}

		var failed int
		for _, arg := range ctx.Args().Slice() {
			addr, err := macaddr.Parse(arg)
			if err != nil {
				failed++
				fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", arg, failColor.Sprint(err))
				continue
			}
			fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", arg, okColor.Sprint(addr))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d addresses are malformed", failed, ctx.NArg())
		}
		return nil
	},
}
