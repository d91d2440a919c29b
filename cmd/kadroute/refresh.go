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

	cli "gopkg.in/urfave/cli.v1"
)

var flagForce = cli.BoolFlag{
	Name:  "force",
	Usage: "emit a refresh target for every bucket, not just stale ones",
}

var refreshCommand = cli.Command{
	Name:      "refresh",
	Usage:     "print random lookup targets for stale buckets",
	ArgsUsage: " ",
	Flags:     []cli.Flag{flagForce},
	Action: func(c *cli.Context) error {
		tbl, err := buildTable(c)
		if err != nil {
			return err
		}
		targets := tbl.GetRefreshList(0, c.Bool(flagForce.Name))
		if len(targets) == 0 {
			fmt.Println("no buckets need a refresh")
			return nil
		}
		for _, t := range targets {
			fmt.Println(t)
		}
		return nil
	},
}
