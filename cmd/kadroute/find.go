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

	"github.com/kadcore/kadroute"
)

var flagFindCount = cli.IntFlag{
	Name:  "count",
	Value: kadroute.DefaultBucketSize,
	Usage: "maximum number of contacts to return (0 = up to the bucket size k)",
}

var findCommand = cli.Command{
	Name:      "find",
	Usage:     "print the closest known contacts to a target id",
	ArgsUsage: "<target-id-hex>",
	Flags:     []cli.Flag{flagFindCount},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("find: expected exactly one target id argument")
		}
		target, err := kadroute.HexID(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		tbl, err := buildTable(c)
		if err != nil {
			return err
		}
		for _, ct := range tbl.FindCloseNodes(target, c.Int(flagFindCount.Name), nil) {
			fmt.Printf("%s\t%s\n", ct.GUID.Hex(), ct.Address.String())
		}
		return nil
	},
}
