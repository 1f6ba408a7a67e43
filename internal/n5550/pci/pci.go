// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pci locates PCI functions through sysfs and reads and writes
// their configuration space.
package pci

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Path is the sysfs PCI device directory; tests point it at a fixture.
var Path = "/sys/bus/pci/devices"

var (
	ErrNotFound  = errors.New("pci: no such device")
	ErrNoAdapter = errors.New("pci: no i2c adapter bound")
)

// Device is one PCI function, e.g. 0000:00:1f.0.
type Device struct {
	Addr string

	dir string
}

// Find returns the first function matching the given vendor and device id,
// scanning in bus address order.
func Find(vendor, device uint16) (*Device, error) {
	dirs, err := filepath.Glob(filepath.Join(Path, "*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		v, err := readHex(filepath.Join(dir, "vendor"))
		if err != nil {
			continue
		}
		d, err := readHex(filepath.Join(dir, "device"))
		if err != nil {
			continue
		}
		if uint16(v) == vendor && uint16(d) == device {
			return &Device{Addr: filepath.Base(dir), dir: dir}, nil
		}
	}
	return nil, fmt.Errorf("%w: %04x:%04x", ErrNotFound, vendor, device)
}

// ConfigDword reads a 32-bit little-endian config space register.
func (d *Device) ConfigDword(offset int64) (uint32, error) {
	var b [4]byte
	if err := d.configRw(offset, b[:], false); err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 |
		uint32(b[3])<<24, nil
}

// WriteConfigByte writes one config space byte.
func (d *Device) WriteConfigByte(offset int64, value byte) error {
	b := [1]byte{value}
	return d.configRw(offset, b[:], true)
}

func (d *Device) configRw(offset int64, b []byte, isWrite bool) error {
	mode := os.O_RDONLY
	if isWrite {
		mode = os.O_RDWR
	}
	f, err := os.OpenFile(filepath.Join(d.dir, "config"), mode, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err = f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if isWrite {
		_, err = f.Write(b)
	} else {
		_, err = f.Read(b)
	}
	return err
}

// I2cAdapter returns the index of the i2c adapter that the kernel bus
// driver bound to this function, or ErrNoAdapter if none is bound yet.
func (d *Device) I2cAdapter() (int, error) {
	dirs, err := filepath.Glob(filepath.Join(d.dir, "i2c-*"))
	if err != nil {
		return -1, err
	}
	for _, dir := range dirs {
		i, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(dir),
			"i2c-"))
		if err == nil {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNoAdapter, d.Addr)
}

func readHex(fn string) (uint64, error) {
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	s = strings.TrimPrefix(s, "0x")
	return strconv.ParseUint(s, 16, 32)
}
