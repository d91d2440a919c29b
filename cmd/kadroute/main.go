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

// Command kadroute is a small operator-facing demonstration of the
// kadroute routing table, structured the way the teacher structures
// cmd/geth: a urfave/cli app with a handful of subcommands sharing a
// few global flags.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/kadcore/kadroute"
)

var (
	flagSelf = cli.StringFlag{
		Name:  "self",
		Usage: "local node id (hex); derived from the machine id if omitted",
	}
	flagBucketSize = cli.IntFlag{
		Name:  "k",
		Value: kadroute.DefaultBucketSize,
		Usage: "bucket capacity",
	}
	flagOptimized = cli.BoolFlag{
		Name:  "optimized",
		Usage: "use the replacement-cache eviction policy instead of liveness pinging",
	}
	flagPeers = cli.StringFlag{
		Name:  "peers",
		Usage: "path to a bootstrap peers file (one \"guid host:port\" pair per line)",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "kadroute"
	app.Usage = "inspect and exercise a kadroute routing table"
	app.Flags = []cli.Flag{flagSelf, flagBucketSize, flagOptimized, flagPeers}
	app.Commands = []cli.Command{
		idCommand,
		addCommand,
		findCommand,
		refreshCommand,
		watchCommand,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("kadroute: %v", err))
		os.Exit(1)
	}
}

// fs is the filesystem every command loads peers through. Production
// code always sees the real OS filesystem; tests substitute
// afero.NewMemMapFs() the way the teacher's own config loaders do.
var fs afero.Fs = afero.NewOsFs()

func resolveSelf(c *cli.Context) (kadroute.NodeID, error) {
	if s := c.GlobalString(flagSelf.Name); s != "" {
		return kadroute.HexID(s)
	}
	return deriveMachineID()
}

func buildTable(c *cli.Context) (kadroute.Table, error) {
	self, err := resolveSelf(c)
	if err != nil {
		return nil, fmt.Errorf("resolving local id: %w", err)
	}
	cfg := kadroute.Config{Self: self, BucketSize: c.GlobalInt(flagBucketSize.Name)}
	var tbl kadroute.Table
	if c.GlobalBool(flagOptimized.Name) {
		tbl = kadroute.NewOptimizedTable(cfg)
	} else {
		tbl = kadroute.NewTable(cfg)
	}
	if peersPath := c.GlobalString(flagPeers.Name); peersPath != "" {
		peers, err := loadPeers(fs, peersPath)
		if err != nil {
			return nil, fmt.Errorf("loading peers: %w", err)
		}
		for _, p := range peers {
			tbl.AddContact(context.Background(), p)
		}
	}
	return tbl, nil
}
