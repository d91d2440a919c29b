// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-wordwrap"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/kadcore/kadroute"
)

var flagInterval = cli.DurationFlag{
	Name:  "interval",
	Value: time.Second,
	Usage: "dashboard refresh interval",
}

var watchCommand = cli.Command{
	Name:      "watch",
	Usage:     "live terminal dashboard of bucket occupancy",
	ArgsUsage: " ",
	Flags:     []cli.Flag{flagInterval},
	Action: func(c *cli.Context) error {
		tbl, err := buildTable(c)
		if err != nil {
			return err
		}
		if !isatty.IsTerminal(uintptr(1)) {
			return fmt.Errorf("watch: stdout is not a terminal")
		}
		return runDashboard(tbl, c.Duration(flagInterval.Name))
	},
}

// runDashboard renders a bar chart of contacts-per-bucket that repaints
// on every tick, the same termui event-loop shape the teacher's own
// console tooling uses for long-running status displays.
func runDashboard(tbl kadroute.Table, interval time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer ui.Close()

	headerText := wordwrap.WrapString(
		fmt.Sprintf("kadroute watch — self %s (q or ctrl-c to quit)", tbl.Self().Hex()),
		uint(ui.TermWidth()-4),
	)
	header := ui.NewPar(headerText)
	header.Height = 3
	header.BorderLabel = "node"

	chart := ui.NewBarChart()
	chart.BorderLabel = "contacts per bucket"

	ages := ui.NewPar("")
	ages.BorderLabel = "bucket age (since last touch)"

	remaining := ui.TermHeight() - header.Height
	chart.Height = remaining * 2 / 3
	ages.Height = remaining - chart.Height

	ui.Body.AddRows(
		ui.NewRow(ui.NewCol(12, 0, header)),
		ui.NewRow(ui.NewCol(12, 0, chart)),
		ui.NewRow(ui.NewCol(12, 0, ages)),
	)
	ui.Body.Align()
	ui.Render(ui.Body)

	redraw := func() {
		renderBuckets(tbl, chart)
		ages.Text = renderAges(tbl)
		ui.Render(ui.Body)
	}
	redraw()

	ui.Handle("/sys/kbd/q", func(ui.Event) { ui.StopLoop() })
	ui.Handle("/sys/kbd/C-c", func(ui.Event) { ui.StopLoop() })
	ui.Handle("/sys/wnd/resize", func(ui.Event) {
		ui.Body.Width = ui.TermWidth()
		ui.Body.Align()
		redraw()
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			redraw()
		}
	}()
	ui.Loop()
	return nil
}

// renderBuckets recomputes the bar chart's data from the table's current
// bucket occupancy.
func renderBuckets(tbl kadroute.Table, chart *ui.BarChart) {
	sizes := tbl.BucketSizes()
	labels := make([]string, len(sizes))
	for i := range sizes {
		labels[i] = fmt.Sprintf("b%d", i)
	}
	chart.DataLabels = labels
	chart.Data = sizes
}

// renderAges formats how long it has been since each bucket was last
// touched, one line per bucket.
func renderAges(tbl kadroute.Table) string {
	var out string
	for i, age := range tbl.BucketAges() {
		out += fmt.Sprintf("b%-3d %s\n", i, age.Round(time.Second))
	}
	return out
}
