// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package dmi matches the running system against the Thecus N5550's
// firmware identity, so the board daemon refuses to poke port I/O and
// SMBus registers on hardware it doesn't know.
package dmi

import (
	"io/ioutil"
	"path/filepath"
	"strings"
)

// Path is the sysfs DMI id directory; tests point it at a fixture.
var Path = "/sys/class/dmi/id"

// The N5550 ships a Phoenix BIOS named CDV_T??X64 on a GraniteWell
// board, revision FABA, sold as the "Milstead Platform". Values are
// compared with punctuation and whitespace stripped, since firmware
// strings vary in both.
var idents = []struct {
	file    string
	pattern string
}{
	{"bios_vendor", "PhoenixTechnologiesLtd*"},
	{"bios_version", "CDVT??X64"},
	{"product_name", "MilsteadPlatform"},
	{"board_name", "GraniteWell"},
	{"board_version", "FABA"},
}

// Match reports whether every DMI ident is present and matches. The
// patterns take the usual '?' and '*' wildcards.
func Match() bool {
	for _, id := range idents {
		b, err := ioutil.ReadFile(filepath.Join(Path, id.file))
		if err != nil {
			return false
		}
		ok, err := filepath.Match(id.pattern, squash(string(b)))
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// squash drops everything but letters and digits.
func squash(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			return r
		}
		return -1
	}, s)
}
