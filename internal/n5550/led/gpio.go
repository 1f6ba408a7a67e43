// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package led

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/ipilcher/n5550-v2/internal/n5550/gpiochip"
)

// ErrNoChardev means the controller is registered but has no usable
// character device.
var ErrNoChardev = errors.New("led: no gpio character device")

// lineGroup is the claimed-lines handle a GpioLeds drives; satisfied by
// *gpiocdev.Lines and by test fakes.
type lineGroup interface {
	SetValues(values []int) error
	Close() error
}

// requestLines is swapped out by tests.
var requestLines = chardevLines

// GpioLeds is the registered group of disk activity LEDs. Pins holds the
// kernel global pin numbers, index for index with the table the group was
// registered from.
type GpioLeds struct {
	Base  int
	Pins  []int
	Names []string

	lines lineGroup
}

// Register locates the ICH GPIO controller by label, assigns each LED its
// global pin number, and claims the lines as active-low outputs, initially
// off.
func Register(table []DiskLed) (*GpioLeds, error) {
	chip, err := gpiochip.Find(ChipLabel)
	if err != nil {
		return nil, err
	}
	g := &GpioLeds{
		Base:  chip.Base,
		Pins:  make([]int, len(table)),
		Names: make([]string, len(table)),
	}
	offsets := make([]int, len(table))
	for i, dl := range table {
		g.Pins[i] = chip.Base + dl.Offset
		g.Names[i] = dl.Name
		offsets[i] = dl.Offset
	}
	g.lines, err = requestLines(chip.Label, offsets)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// SetValues drives the group; 1 lights a LED, 0 darkens it. The active
// low inversion happens in the kernel.
func (g *GpioLeds) SetValues(values []int) error {
	return g.lines.SetValues(values)
}

// Unregister darkens the group and releases the lines.
func (g *GpioLeds) Unregister() error {
	g.lines.SetValues(make([]int, len(g.Pins)))
	return g.lines.Close()
}

// chardevLines finds the /dev/gpiochip* device whose label matches and
// claims the given offsets on it. The chip handle can be closed once the
// lines are requested.
func chardevLines(label string, offsets []int) (lineGroup, error) {
	for _, name := range gpiocdev.Chips() {
		c, err := gpiocdev.NewChip(name)
		if err != nil {
			continue
		}
		if c.Label != label {
			c.Close()
			continue
		}
		ll, err := c.RequestLines(offsets,
			gpiocdev.AsOutput(make([]int, len(offsets))...),
			gpiocdev.AsActiveLow,
			gpiocdev.WithConsumer("n5550-board"))
		c.Close()
		if err != nil {
			return nil, fmt.Errorf("led: request %s: %w", label,
				err)
		}
		return ll, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoChardev, label)
}
