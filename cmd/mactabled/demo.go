package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/iamBelugaa/mactable/pkg/clock"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/filesys"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
	"github.com/iamBelugaa/mactable/pkg/mactable"
	"github.com/iamBelugaa/mactable/pkg/options"
)

var (
	capacityFlag = &cli.IntFlag{
		Name:  "capacity",
		Usage: "number of table slots",
		Value: 5,
	}
	ttlFlag = &cli.DurationFlag{
		Name:  "ttl",
		Usage: "default time to live of an entry",
		Value: 30 * time.Second,
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML file with capacity, default_ttl_seconds and hash; flags given explicitly win",
	}
	journalFlag = &cli.StringFlag{
		Name:  "journal",
		Usage: "append every table event to this file",
	}
)

var commandDemo = &cli.Command{
	Name:  "demo",
	Usage: "run a scripted session against a table on a simulated clock",
	Description: `
Fills a small table past capacity, updates, deletes and re-inserts addresses, lets
entries expire and exercises role-protected eviction. Time is simulated, so the
session runs instantly; every step advances the clock by one second.`,
	Flags: []cli.Flag{capacityFlag, ttlFlag, configFlag, journalFlag},
	Action: func(ctx *cli.Context) (err error) {
		log, err := newLogger(ctx)
		if err != nil {
			return err
		}

		out := ctx.App.Writer
		clk := clock.NewSimulated(time.Time{})
		opts := []options.OptionFunc{
			options.WithClock(clk),
			options.WithLogger(log),
			options.WithEventSink(eventPrinter(out)),
		}

		if path := ctx.String(configFlag.Name); path != "" {
			fileOpts, err := options.LoadFile(path)
			if err != nil {
				return err
			}
			opts = append(opts, fileOpts...)
		}
		if ctx.IsSet(capacityFlag.Name) || ctx.String(configFlag.Name) == "" {
			opts = append(opts, options.WithCapacity(ctx.Int(capacityFlag.Name)))
		}
		if ctx.IsSet(ttlFlag.Name) || ctx.String(configFlag.Name) == "" {
			opts = append(opts, options.WithDefaultTTL(ctx.Duration(ttlFlag.Name)))
		}

		if path := ctx.String(journalFlag.Name); path != "" {
			f, err := filesys.OpenAppend(path, 0644)
			if err != nil {
				return fmt.Errorf("failed to open journal: %w", err)
			}
			opts = append(opts, options.WithEventSink(events.NewJournal(f, log)))
		}

		table, err := mactable.New(ctx.Context, service, opts...)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, table.Close())
		}()

		d := &demo{ctx: ctx.Context, table: table, clock: clk, out: out}
		return d.run()
	},
}

// demo walks a table through the lifecycle of its entries.
type demo struct {
	ctx   context.Context
	table *mactable.Table
	clock *clock.Simulated
	out   io.Writer
	err   error
}

func (d *demo) step(title string) {
	fmt.Fprintf(d.out, "%s %s\n", infoColor.Sprint("==>"), title)
}

func (d *demo) tick() {
	d.clock.Advance(time.Second)
}

func (d *demo) report(what string, outcome events.Outcome, err error) {
	if err != nil {
		d.err = multierr.Append(d.err, err)
		fmt.Fprintf(d.out, "  %s: %s\n", what, failColor.Sprint(err))
		return
	}
	fmt.Fprintf(d.out, "  %s: %s\n", what, outcomeColor(outcome).Sprint(outcome))
}

func (d *demo) run() error {
	addrs := make([]macaddr.Address, d.table.Capacity()+1)
	for i := range addrs {
		n := 0x3c4d5e + i
		addrs[i] = macaddr.Address{0x00, 0x1a, 0x2b, byte(n >> 16), byte(n >> 8), byte(n)}
	}
	first, extra := addrs[0], addrs[len(addrs)-1]

	d.step(fmt.Sprintf("Inserting %d addresses into %d slots", len(addrs), d.table.Capacity()))
	for _, addr := range addrs {
		outcome, err := d.table.Insert(d.ctx, addr)
		d.report("insert "+addr.String(), outcome, err)
		d.tick()
	}

	d.step("Checking addresses")
	for _, addr := range []macaddr.Address{first, extra} {
		outcome, err := d.table.Exists(d.ctx, addr)
		d.report("exists "+addr.String(), outcome, err)
	}
	d.tick()

	d.step("Reading slot 0")
	if entry, outcome, err := d.table.GetByIndex(d.ctx, 0); err != nil || outcome != events.Found {
		d.report("slot 0", outcome, err)
	} else {
		fmt.Fprintf(d.out, "  slot 0: %s\n", entry.Address)
	}
	d.tick()

	d.step("Re-inserting " + first.String())
	outcome, err := d.table.Insert(d.ctx, first)
	d.report("insert "+first.String(), outcome, err)
	d.tick()

	if len(addrs) > 2 {
		victim := addrs[len(addrs)/2]
		d.step("Deleting " + victim.String())
		outcome, err = d.table.Delete(d.ctx, victim)
		d.report("delete "+victim.String(), outcome, err)
		outcome, err = d.table.Exists(d.ctx, victim)
		d.report("exists "+victim.String(), outcome, err)
		d.tick()

		d.step("Inserting " + extra.String() + " into the freed slot")
		outcome, err = d.table.Insert(d.ctx, extra)
		d.report("insert "+extra.String(), outcome, err)
		d.tick()
	}

	d.step("Refreshing " + first.String() + " with a 120s TTL and role 1")
	outcome, err = d.table.Insert(d.ctx, first, mactable.WithTTL(120*time.Second), mactable.WithRole(1))
	d.report("insert "+first.String(), outcome, err)

	if next, ok := d.table.NextExpiry(); ok {
		d.step("Letting entries expire")
		d.clock.Advance(next.Sub(d.clock.Now()))
		d.clock.Advance(40 * time.Second)
	}
	d.entries()

	d.step("Removing the oldest entry outside role 1")
	removed, err := d.table.RemoveOldest(d.ctx, 1)
	if err != nil {
		d.err = multierr.Append(d.err, err)
	}
	fmt.Fprintf(d.out, "  removed: %t\n", removed)

	d.step("Evicting role 1")
	evicted, err := d.table.EvictByRole(d.ctx, 1)
	if err != nil {
		d.err = multierr.Append(d.err, err)
	}
	fmt.Fprintf(d.out, "  evicted: %d\n", evicted)

	d.step("Statistics")
	stats, err := d.table.Stats()
	if err != nil {
		return multierr.Append(d.err, err)
	}
	renderStats(d.out, stats)

	if err := d.table.Verify(); err != nil {
		d.err = multierr.Append(d.err, err)
	}
	return d.err
}

// entries prints the live entries.
func (d *demo) entries() {
	d.step("Entries")
	entries, err := d.table.Entries(d.ctx)
	if err != nil {
		d.err = multierr.Append(d.err, err)
		return
	}
	renderEntries(d.out, entries, d.clock.Now())
}
