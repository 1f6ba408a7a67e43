// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package dmi

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func dmiFixture(t *testing.T, ids map[string]string) {
	t.Helper()
	Path = t.TempDir()
	for fn, s := range ids {
		err := ioutil.WriteFile(filepath.Join(Path, fn),
			[]byte(s+"\n"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

var n5550Ids = map[string]string{
	"bios_vendor":   "Phoenix Technologies Ltd.",
	"bios_version":  "CDV_T56X64",
	"product_name":  "Milstead Platform",
	"board_name":    "GraniteWell",
	"board_version": "FAB A",
}

func TestMatch(t *testing.T) {
	defer func(s string) { Path = s }(Path)

	dmiFixture(t, n5550Ids)
	if !Match() {
		t.Error("n5550 idents did not match")
	}
}

func TestMatchOtherBoard(t *testing.T) {
	defer func(s string) { Path = s }(Path)

	ids := make(map[string]string)
	for k, v := range n5550Ids {
		ids[k] = v
	}
	ids["board_name"] = "D34010WYK"
	dmiFixture(t, ids)
	if Match() {
		t.Error("foreign board matched")
	}
}

func TestMatchMissingIdent(t *testing.T) {
	defer func(s string) { Path = s }(Path)

	ids := make(map[string]string)
	for k, v := range n5550Ids {
		if k != "board_version" {
			ids[k] = v
		}
	}
	dmiFixture(t, ids)
	if Match() {
		t.Error("matched with missing ident")
	}
}

func TestMatchBiosVersionWildcard(t *testing.T) {
	defer func(s string) { Path = s }(Path)

	ids := make(map[string]string)
	for k, v := range n5550Ids {
		ids[k] = v
	}
	ids["bios_version"] = "CDV_T99X64"
	dmiFixture(t, ids)
	if !Match() {
		t.Error("bios version wildcard did not match")
	}
}
