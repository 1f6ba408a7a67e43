// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pca9532

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ipilcher/n5550-v2/internal/n5550/pci"
)

func smbusFixture(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(pci.Path, "0000:00:1f.3")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for fn, s := range map[string]string{
		"vendor": "0x8086",
		"device": "0x3a30",
	} {
		err := ioutil.WriteFile(filepath.Join(dir, fn),
			[]byte(s+"\n"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestOpenNoController(t *testing.T) {
	defer func(s string) { pci.Path = s }(pci.Path)
	pci.Path = t.TempDir()

	r := Registry{Vendor: 0x8086, Device: 0x3a30}
	_, err := r.Open()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err %v, want ErrNotFound", err)
	}
}

func TestOpenAdapterNeverBinds(t *testing.T) {
	defer func(s string) { pci.Path = s }(pci.Path)
	pci.Path = t.TempDir()
	smbusFixture(t)

	r := Registry{
		Vendor: 0x8086,
		Device: 0x3a30,
		Wait:   50 * time.Millisecond,
	}
	_, err := r.Open()
	if !errors.Is(err, ErrBusy) {
		t.Errorf("err %v, want ErrBusy", err)
	}
}
