// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ich drives the GPIO function of the N5550's ICH10R southbridge.
// The BIOS leaves the disk activity pins muxed to their alternate
// functions; Enable switches them to GPIO so the LED driver can claim
// them.
package ich

import (
	"github.com/platinasystems/ioport"

	"github.com/ipilcher/n5550-v2/internal/n5550/pci"
)

const (
	// ICH10R PCI functions
	VendorIntel = 0x8086
	LPCDevice   = 0x3a16 // LPC bridge, hosts the GPIO function
	I2CDevice   = 0x3a30 // SMBus controller

	// LPC bridge config registers
	gpioBaseReg  = 0x48
	gpioCtrlReg  = 0x4c
	gpioBaseMask = 0xff80
	gpioEnable   = 0x10

	// GPIO function select banks, offsets from the I/O base
	useSel0 = 0x00
	useSel1 = 0x30

	// Disk activity pins 0, 2, 3, 4 and 5, plus 9, 28 and 34. Pin 1
	// is not wired on this board.
	useSel0Pins = 1<<0 | 1<<2 | 1<<3 | 1<<4 | 1<<5 | 1<<9 | 1<<28
	useSel1Pins = 1 << (34 - 32)
)

// PortIO is 32-bit x86 port I/O; satisfied by the /dev/port
// implementation below and by test fakes.
type PortIO interface {
	Inl(port uint16) (uint32, error)
	Outl(port uint16, value uint32) error
}

// devPort does 32-bit port I/O a byte at a time. The ICH GPIO registers
// accept 1, 2 or 4 byte accesses.
type devPort struct{}

func (devPort) Inl(port uint16) (uint32, error) {
	var v uint32
	for i := uint(0); i < 4; i++ {
		b, err := ioport.Inb(port + uint16(i))
		if err != nil {
			return 0, err
		}
		v |= uint32(b) << (8 * i)
	}
	return v, nil
}

func (devPort) Outl(port uint16, value uint32) error {
	for i := uint(0); i < 4; i++ {
		err := ioport.Outb(port+uint16(i), byte(value>>(8*i)))
		if err != nil {
			return err
		}
	}
	return nil
}

// Enabler switches the board's LED pins to their GPIO function.
type Enabler struct {
	Port PortIO // nil means /dev/port
}

// Enable locates the LPC bridge, forces the GPIO function on, and ORs
// the board's pins into the USE_SEL banks. Pins owned by other functions
// are not disturbed, and there is no undo.
func (e *Enabler) Enable() error {
	dev, err := pci.Find(VendorIntel, LPCDevice)
	if err != nil {
		return err
	}
	base32, err := dev.ConfigDword(gpioBaseReg)
	if err != nil {
		return err
	}
	base := uint16(base32 & gpioBaseMask)
	if err = dev.WriteConfigByte(gpioCtrlReg, gpioEnable); err != nil {
		return err
	}
	port := e.Port
	if port == nil {
		port = devPort{}
	}
	for _, sel := range []struct {
		offset uint16
		pins   uint32
	}{
		{useSel0, useSel0Pins},
		{useSel1, useSel1Pins},
	} {
		v, err := port.Inl(base + sel.offset)
		if err != nil {
			return err
		}
		if v&sel.pins == sel.pins {
			continue
		}
		if err = port.Outl(base+sel.offset, v|sel.pins); err != nil {
			return err
		}
	}
	return nil
}
