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

	"github.com/denisbrodbeck/machineid"
	cli "gopkg.in/urfave/cli.v1"
	"golang.org/x/crypto/sha3"

	"github.com/kadcore/kadroute"
)

// deriveMachineID turns the host's machine id into a stable 160-bit
// NodeID, the way a long-running node would pick a persistent identity
// without requiring the operator to generate and store a key file.
func deriveMachineID() (kadroute.NodeID, error) {
	raw, err := machineid.ProtectedID("kadroute")
	if err != nil {
		return kadroute.NodeID{}, fmt.Errorf("reading machine id: %w", err)
	}
	sum := sha3.Sum256([]byte(raw))
	id, err := kadroute.BytesID(sum[:20])
	if err != nil {
		return kadroute.NodeID{}, err
	}
	return id, nil
}

var idCommand = cli.Command{
	Name:  "id",
	Usage: "print the local node id derived from this machine",
	Action: func(c *cli.Context) error {
		self, err := resolveSelf(c)
		if err != nil {
			return err
		}
		fmt.Println(self.Hex())
		return nil
	},
}
