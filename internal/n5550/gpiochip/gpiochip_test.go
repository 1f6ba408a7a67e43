// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package gpiochip

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func chipFixture(t *testing.T, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(Path, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for fn, s := range files {
		err := ioutil.WriteFile(filepath.Join(dir, fn),
			[]byte(s+"\n"), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestFind(t *testing.T) {
	defer func(s string) { Path = s }(Path)
	Path = t.TempDir()

	chipFixture(t, "gpiochip0", map[string]string{
		"label": "INT34C6:00",
		"base":  "0",
		"ngpio": "64",
	})
	chipFixture(t, "gpiochip64", map[string]string{
		"label": "gpio_ich",
		"base":  "64",
		"ngpio": "64",
	})

	chip, err := Find("gpio_ich")
	if err != nil {
		t.Fatal(err)
	}
	if chip.Base != 64 {
		t.Errorf("base %d, want 64", chip.Base)
	}
	if chip.Ngpio != 64 {
		t.Errorf("ngpio %d, want 64", chip.Ngpio)
	}
}

func TestFindNotFound(t *testing.T) {
	defer func(s string) { Path = s }(Path)
	Path = t.TempDir()

	chipFixture(t, "gpiochip0", map[string]string{
		"label": "INT34C6:00",
		"base":  "0",
		"ngpio": "64",
	})

	_, err := Find("gpio_ich")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err %v, want ErrNotFound", err)
	}
}

func TestFindEmptyClass(t *testing.T) {
	defer func(s string) { Path = s }(Path)
	Path = t.TempDir()

	_, err := Find("gpio_ich")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err %v, want ErrNotFound", err)
	}
}

func TestFindInvalidBase(t *testing.T) {
	defer func(s string) { Path = s }(Path)
	Path = t.TempDir()

	chipFixture(t, "gpiochip64", map[string]string{
		"label": "gpio_ich",
		"base":  "-1",
		"ngpio": "64",
	})

	_, err := Find("gpio_ich")
	if !errors.Is(err, ErrInvalidBase) {
		t.Errorf("err %v, want ErrInvalidBase", err)
	}
}

func TestFindSkipsUnreadableLabel(t *testing.T) {
	defer func(s string) { Path = s }(Path)
	Path = t.TempDir()

	// label file missing entirely
	chipFixture(t, "gpiochip0", map[string]string{
		"base":  "0",
		"ngpio": "64",
	})
	chipFixture(t, "gpiochip64", map[string]string{
		"label": "gpio_ich",
		"base":  "64",
		"ngpio": "64",
	})

	chip, err := Find("gpio_ich")
	if err != nil {
		t.Fatal(err)
	}
	if chip.Base != 64 {
		t.Errorf("base %d, want 64", chip.Base)
	}
}
