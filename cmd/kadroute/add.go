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

	"github.com/fatih/color"
	cli "gopkg.in/urfave/cli.v1"
)

var addCommand = cli.Command{
	Name:      "add",
	Usage:     "load -peers into a table and report the resulting bucket layout",
	ArgsUsage: " ",
	Action: func(c *cli.Context) error {
		tbl, err := buildTable(c)
		if err != nil {
			return err
		}
		fmt.Println(color.GreenString("self %s", tbl.Self().Hex()))
		fmt.Printf("%d contacts across %d buckets\n", tbl.Len(), tbl.BucketCount())
		return nil
	},
}
