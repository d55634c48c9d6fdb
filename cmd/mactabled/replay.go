package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/filesys"
)

var commandReplay = &cli.Command{
	Name:      "replay",
	Usage:     "print the events recorded in one or more journal files",
	ArgsUsage: "<pattern> [<pattern>...]",
	Description: `
Decodes journals written by "demo --journal" and prints every record in order.
Patterns are shell globs; matching files are read in lexical order.`,
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() == 0 {
			return fmt.Errorf("at least one journal pattern is required")
		}

		var records []events.Event
		for _, pattern := range ctx.Args().Slice() {
			files, err := filesys.ReadDir(pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no journal matches %q", pattern)
			}

			for _, file := range files {
				recs, err := readJournal(file)
				if err != nil {
					return err
				}
				records = append(records, recs...)
			}
		}

		renderJournal(ctx.App.Writer, records)
		return nil
	},
}

func readJournal(path string) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []events.Event
	reader := events.NewJournalReader(f)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("journal %s, record %d: %w", path, len(records)+1, err)
		}
		records = append(records, ev)
	}
}
