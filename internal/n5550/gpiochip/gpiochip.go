// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package gpiochip locates registered GPIO controllers by driver label
// through the sysfs gpio class.
package gpiochip

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"
)

// Path is the sysfs gpio class directory; tests point it at a fixture.
var Path = "/sys/class/gpio"

var (
	ErrNotFound    = errors.New("gpiochip: no chip with label")
	ErrInvalidBase = errors.New("gpiochip: invalid base")
)

// Chip is a registered GPIO controller. Base is the chip's first pin in
// the kernel's global GPIO number space, so pin i of the chip is global
// pin Base+i.
type Chip struct {
	Label string
	Base  int
	Ngpio int
}

// Find returns the first controller whose label matches. Entries with an
// unreadable label are skipped; a matching entry with a missing or
// negative base yields ErrInvalidBase.
func Find(label string) (*Chip, error) {
	dirs, err := filepath.Glob(filepath.Join(Path, "gpiochip*"))
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		s, err := readString(filepath.Join(dir, "label"))
		if err != nil || s != label {
			continue
		}
		base, err := readInt(filepath.Join(dir, "base"))
		if err != nil || base < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBase,
				filepath.Base(dir))
		}
		ngpio, err := readInt(filepath.Join(dir, "ngpio"))
		if err != nil {
			ngpio = 0
		}
		return &Chip{Label: label, Base: base, Ngpio: ngpio}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, label)
}

func readString(fn string) (string, error) {
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func readInt(fn string) (int, error) {
	s, err := readString(fn)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}
