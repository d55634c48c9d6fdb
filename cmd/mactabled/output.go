package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/mactable"
)

var (
	okColor   = color.New(color.FgGreen)
	infoColor = color.New(color.FgCyan)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

func outcomeColor(o events.Outcome) *color.Color {
	switch o {
	case events.Inserted, events.Updated, events.Found:
		return okColor
	case events.Deleted, events.Timeout:
		return warnColor
	case events.Full:
		return failColor
	}
	return infoColor
}

// eventPrinter is the demo's event sink: one coloured line per table event.
func eventPrinter(w io.Writer) events.Sink {
	return events.SinkFunc(func(ev events.Event) {
		slot := "-"
		if ev.Slot != events.NoSlot {
			slot = strconv.Itoa(ev.Slot)
		}
		fmt.Fprintf(w, "  event %-9s slot %-3s %s\n", outcomeColor(ev.Outcome).Sprint(ev.Outcome), slot, ev.Address)
	})
}

func renderEntries(w io.Writer, entries []mactable.SlotEntry, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Slot", "Address", "Role", "Expires In"})
	table.SetAutoFormatHeaders(false)

	for _, e := range entries {
		table.Append([]string{
			strconv.Itoa(e.Slot),
			e.Address.String(),
			strconv.Itoa(int(e.Role)),
			e.Expiry().Sub(now).Round(time.Millisecond).String(),
		})
	}
	table.Render()
}

func renderStats(w io.Writer, stats mactable.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Inserts", "Deletes", "Expired", "Active"})
	table.SetAutoFormatHeaders(false)
	table.Append([]string{
		strconv.FormatUint(stats.TotalInserts, 10),
		strconv.FormatUint(stats.TotalDeletes, 10),
		strconv.FormatUint(stats.TotalExpired, 10),
		strconv.FormatUint(stats.ActiveEntries, 10),
	})
	table.Render()
}

func renderJournal(w io.Writer, records []events.Event) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "At", "Event", "Slot", "Address"})
	table.SetAutoFormatHeaders(false)

	for i, ev := range records {
		slot := "-"
		if ev.Slot != events.NoSlot {
			slot = strconv.Itoa(ev.Slot)
		}
		at := "-"
		if !ev.At.IsZero() {
			at = ev.At.UTC().Format(time.RFC3339Nano)
		}
		table.Append([]string{strconv.Itoa(i + 1), at, ev.Outcome.String(), slot, ev.Address.String()})
	}
	table.Render()
}
