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

package kadroute

import (
	"math/big"
	"strings"
	"testing"
	"testing/quick"
)

func quickcfg() *quick.Config {
	return &quick.Config{MaxCount: 5000}
}

func TestHexIDRoundTrip(t *testing.T) {
	id, err := HexID(strings.Repeat("ab", idLen))
	if err != nil {
		t.Fatalf("HexID: %v", err)
	}
	if got := id.Hex(); got != strings.Repeat("ab", idLen) {
		t.Errorf("Hex() = %s, want %s", got, strings.Repeat("ab", idLen))
	}
	if _, err := HexID("0x" + strings.Repeat("ab", idLen)); err != nil {
		t.Errorf("HexID with 0x prefix: %v", err)
	}
}

func TestHexIDBadEncoding(t *testing.T) {
	cases := []string{"", "zz", strings.Repeat("a", idHexLen-1), strings.Repeat("zz", idLen)}
	for _, c := range cases {
		if _, err := HexID(c); err == nil {
			t.Errorf("HexID(%q): expected ErrBadEncoding, got nil", c)
		}
	}
}

func TestBytesIDRoundTrip(t *testing.T) {
	raw := make([]byte, idLen)
	for i := range raw {
		raw[i] = byte(i)
	}
	id, err := BytesID(raw)
	if err != nil {
		t.Fatalf("BytesID: %v", err)
	}
	if got := id.Bytes(); !bytesEqual(got, raw) {
		t.Errorf("Bytes() = %x, want %x", got, raw)
	}
}

func TestParseIDAcceptsBothEncodings(t *testing.T) {
	raw := make([]byte, idLen)
	raw[0] = 0xFF
	viaRaw, err := ParseID(string(raw))
	if err != nil {
		t.Fatalf("ParseID(raw): %v", err)
	}
	viaHex, err := ParseID(viaRaw.Hex())
	if err != nil {
		t.Fatalf("ParseID(hex): %v", err)
	}
	if viaRaw != viaHex {
		t.Errorf("ParseID round trip mismatch: %x != %x", viaRaw, viaHex)
	}
}

func TestDistanceXorSelfInverse(t *testing.T) {
	f := func(a, b NodeID) bool {
		d := Distance(a, b)
		return Distance(d, b) == a
	}
	if err := quick.Check(f, quickcfg()); err != nil {
		t.Error(err)
	}
}

func TestDistanceIdentity(t *testing.T) {
	f := func(a NodeID) bool {
		return Distance(a, a).IsZero()
	}
	if err := quick.Check(f, quickcfg()); err != nil {
		t.Error(err)
	}
}

func TestDistcmpAgainstBigInt(t *testing.T) {
	distcmpBig := func(target, a, b NodeID) int {
		tbig, abig, bbig := target.big(), a.big(), b.big()
		return new(big.Int).Xor(tbig, abig).Cmp(new(big.Int).Xor(tbig, bbig))
	}
	if err := quick.CheckEqual(distcmp, distcmpBig, quickcfg()); err != nil {
		t.Error(err)
	}
}

func TestDistcmpEqual(t *testing.T) {
	var base, x NodeID
	for i := range base {
		base[i] = byte(i)
		x[i] = byte(idLen - i)
	}
	if distcmp(base, x, x) != 0 {
		t.Errorf("distcmp(base, x, x) != 0")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
