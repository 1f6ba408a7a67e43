// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package led names the N5550's indicators and claims the GPIO backed
// ones. The green disk activity LEDs hang off the ICH GPIO controller;
// the red, orange and blue indicators sit behind PCA9532 dimmers and are
// described here by slot tables that the pca9532 package programs.
package led

import (
	"errors"
	"fmt"
)

// State of an indicator at registration.
type State int

const (
	Off State = iota
	On
)

// SlotType says what is wired to one of a dimmer's 16 positions.
type SlotType int

const (
	None SlotType = iota // unconnected, never programmed
	Led                  // named indicator
	Gpio                 // spare input/output line
)

// Slot is one dimmer position. Position is wiring, so tables list all 16
// slots in order and leave the unconnected ones zero.
type Slot struct {
	Name  string
	Type  SlotType
	State State
}

// DiskLed pairs an activity LED with its pin offset from the ICH chip
// base. Keeping name and offset in one row stops the tables drifting
// apart.
type DiskLed struct {
	Name   string
	Offset int
}

// ChipLabel is the controller label the gpio_ich driver registers.
const ChipLabel = "gpio_ich"

// DiskLedTrigger is published so userspace knows what drives the
// activity LEDs.
const DiskLedTrigger = "blkdev"

// DiskLeds are the green activity LEDs, one per drive bay. Pin 1 is not
// wired on this board.
var DiskLeds = []DiskLed{
	{"n5550:green:disk-act-0", 0},
	{"n5550:green:disk-act-1", 2},
	{"n5550:green:disk-act-2", 3},
	{"n5550:green:disk-act-3", 4},
	{"n5550:green:disk-act-4", 5},
}

// DiskStatSlots is the dimmer at 0x64, red disk status LEDs in the first
// five slots.
var DiskStatSlots = [16]Slot{
	0: {Name: "n5550:red:disk-stat-0", Type: Led},
	1: {Name: "n5550:red:disk-stat-1", Type: Led},
	2: {Name: "n5550:red:disk-stat-2", Type: Led},
	3: {Name: "n5550:red:disk-stat-3", Type: Led},
	4: {Name: "n5550:red:disk-stat-4", Type: Led},
}

// StatusSlots is the dimmer at 0x62, board status LEDs plus spare lines.
var StatusSlots = [16]Slot{
	0:  {Type: Gpio},
	1:  {Type: Gpio},
	2:  {Type: Gpio},
	3:  {Type: Gpio},
	9:  {Name: "n5550:orange:busy", Type: Led},
	10: {Name: "n5550:blue:usb", Type: Led},
	12: {Name: "n5550:red:fail", Type: Led},
	15: {Type: Gpio},
}

// ErrBadTable rejects slot tables with an unnamed Led slot or a named
// None slot.
var ErrBadTable = errors.New("led: bad slot table")

// Validate checks a slot table against ErrBadTable.
func Validate(slots *[16]Slot) error {
	for i, s := range slots {
		if s.Type == Led && s.Name == "" {
			return fmt.Errorf("%w: slot %d: unnamed led",
				ErrBadTable, i)
		}
		if s.Type == None && s.Name != "" {
			return fmt.Errorf("%w: slot %d: named empty slot",
				ErrBadTable, i)
		}
	}
	return nil
}

// Names returns the indicator names of a slot table, in slot order.
func Names(slots *[16]Slot) []string {
	var names []string
	for _, s := range slots {
		if s.Type == Led {
			names = append(names, s.Name)
		}
	}
	return names
}
