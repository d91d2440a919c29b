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
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/kadcore/kadroute"
)

// loadPeers reads a bootstrap peers file, one "guid host:port" pair per
// line, blank lines and "#"-prefixed lines ignored. The filesystem is
// injected so tests can exercise this against afero.NewMemMapFs()
// instead of touching the real disk.
func loadPeers(fs afero.Fs, path string) ([]*kadroute.Contact, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var peers []*kadroute.Contact
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected \"guid host:port\", got %q", path, lineNo, line)
		}
		guid, err := kadroute.HexID(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		host, portStr, err := net.SplitHostPort(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad port %q", path, lineNo, portStr)
		}
		addr := kadroute.Address{Host: host, Port: port, IP: net.ParseIP(host)}
		peers = append(peers, kadroute.NewContact(guid, addr, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return peers, nil
}
