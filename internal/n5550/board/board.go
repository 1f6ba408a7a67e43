// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package board sequences the N5550's LED hardware bring-up. Setup runs
// the stages in a fixed order, expander clients first, then the ICH pin
// mux, then the disk activity LEDs, and rolls back completed stages when
// a later one fails. The board is either fully up or fully down; there is
// no partially initialized state to resume from.
package board

import (
	"fmt"

	"github.com/ipilcher/n5550-v2/external/log"
	"github.com/ipilcher/n5550-v2/internal/n5550/led"
)

// State of the bring-up sequence. The intermediate states are only ever
// seen from within Setup; outside of it the board is Uninit or LedsUp.
type State int

const (
	Uninit State = iota
	ExpandersUp
	PinsUp
	LedsUp
)

func (s State) String() string {
	switch s {
	case Uninit:
		return "uninit"
	case ExpandersUp:
		return "expanders-up"
	case PinsUp:
		return "pins-up"
	case LedsUp:
		return "leds-up"
	}
	return fmt.Sprint(int(s))
}

// Expander client addresses
const (
	DiskStatAddr = 0x64 // red disk status LEDs
	StatusAddr   = 0x62 // busy, usb and fail LEDs plus spare lines
)

// Client is an instantiated expander client.
type Client interface {
	Unregister() error
}

// Adapter hands out expander clients on an open bus.
type Adapter interface {
	NewClient(addr int, slots *[16]led.Slot) (Client, error)
	Close() error
}

// Device is the registered disk activity LED group.
type Device interface {
	Unregister() error
}

// Config supplies the bring-up collaborators; satisfied by the pca9532,
// ich and led packages, and by fakes in tests.
type Config struct {
	Expanders interface {
		Open() (Adapter, error)
	}
	Pins interface {
		Enable() error
	}
	DiskLeds interface {
		Register(table []led.DiskLed) (Device, error)
	}
}

// Board is the orchestrator.
type Board struct {
	cfg     Config
	state   State
	clients [2]Client
	leds    Device
}

func New(cfg Config) *Board { return &Board{cfg: cfg} }

func (b *Board) State() State { return b.state }

// Clients returns the expander clients, disk status first, or zero
// values before Setup.
func (b *Board) Clients() (diskStat, status Client) {
	return b.clients[0], b.clients[1]
}

// DiskLedDevice returns the registered activity LED group, or nil before
// Setup.
func (b *Board) DiskLedDevice() Device { return b.leds }

// Setup runs the bring-up sequence. On a stage failure the completed
// stages are undone and the board is left Uninit; the pin mux has no
// undo, so enables from a rolled-back Setup stay applied.
func (b *Board) Setup() error {
	if b.state != Uninit {
		return fmt.Errorf("setup from %s", b.state)
	}
	if err := b.expanderSetup(); err != nil {
		log.Print("err", "expander setup: ", err)
		return err
	}
	b.state = ExpandersUp
	if err := b.cfg.Pins.Enable(); err != nil {
		log.Print("err", "gpio pin setup: ", err)
		b.rollback()
		return err
	}
	b.state = PinsUp
	d, err := b.cfg.DiskLeds.Register(led.DiskLeds)
	if err != nil {
		log.Print("err", "disk led setup: ", err)
		b.rollback()
		return err
	}
	b.leds = d
	b.state = LedsUp
	return nil
}

// expanderSetup opens the adapter only long enough to instantiate both
// clients. If the second client fails the first is unregistered, so the
// stage is all or nothing.
func (b *Board) expanderSetup() error {
	adapter, err := b.cfg.Expanders.Open()
	if err != nil {
		return err
	}
	defer adapter.Close()
	c0, err := adapter.NewClient(DiskStatAddr, &led.DiskStatSlots)
	if err != nil {
		return err
	}
	c1, err := adapter.NewClient(StatusAddr, &led.StatusSlots)
	if err != nil {
		c0.Unregister()
		return err
	}
	b.clients[0], b.clients[1] = c0, c1
	return nil
}

func (b *Board) rollback() {
	for i, c := range b.clients {
		if c != nil {
			c.Unregister()
			b.clients[i] = nil
		}
	}
	b.state = Uninit
}

// Teardown reverses a successful Setup: the LED group goes first, then
// the expander clients. Anything else is a no-op.
func (b *Board) Teardown() {
	if b.state != LedsUp {
		return
	}
	b.leds.Unregister()
	b.leds = nil
	for i, c := range b.clients {
		c.Unregister()
		b.clients[i] = nil
	}
	b.state = Uninit
}
