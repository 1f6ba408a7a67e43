// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pca9532 programs the N5550's two PCA9532 LED dimmers on the
// ICH10R SMBus. The Registry locates the bus controller and waits for
// the kernel i2c driver to bind it; an Adapter pins the bus device open
// while Clients are instantiated; a Client owns one dimmer and the slot
// table describing what is wired to it.
package pca9532

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/platinasystems/i2c"

	"github.com/ipilcher/n5550-v2/internal/n5550/led"
	"github.com/ipilcher/n5550-v2/internal/n5550/pci"
)

// PCA9532 registers. LED selector registers pack four slots of two bits
// each, low slot in the low bits.
const (
	regInput0 = iota
	regInput1
	regPsc0
	regPwm0
	regPsc1
	regPwm1
	regLs0
)

// LED selector codes
const (
	lsOff  = 0 // output high impedance
	lsOn   = 1 // output low
	lsPwm0 = 2
	lsPwm1 = 3
)

var (
	ErrNotFound = errors.New("pca9532: no device")
	ErrBusy     = errors.New("pca9532: adapter not ready")
	ErrNoLed    = errors.New("pca9532: no such led")
)

// regIO is byte register access to one dimmer; satisfied by the SMBus
// connection below and by test fakes.
type regIO interface {
	Read(reg uint8) (byte, error)
	Write(reg uint8, value byte) error
}

// smbusConn reaches a dimmer through /dev/i2c-N, opening the bus per
// operation the way the rest of the tree does SMBus access.
type smbusConn struct {
	bus  int
	addr int
}

func (c smbusConn) Read(reg uint8) (value byte, err error) {
	err = i2c.Do(c.bus, c.addr, func(bus *i2c.Bus) error {
		var d i2c.SMBusData
		if err := bus.Read(reg, i2c.ByteData, &d); err != nil {
			return err
		}
		value = d[0]
		return nil
	})
	return
}

func (c smbusConn) Write(reg uint8, value byte) error {
	return i2c.Do(c.bus, c.addr, func(bus *i2c.Bus) error {
		d := i2c.SMBusData{value}
		return bus.Write(reg, i2c.ByteData, &d)
	})
}

// Registry locates the SMBus controller by PCI identity and opens its
// adapter.
type Registry struct {
	Vendor, Device uint16

	// Wait bounds how long Open waits for the i2c bus driver to bind
	// the controller; zero means 2s.
	Wait time.Duration
}

// Adapter is an open handle on the bus device. Holding it open keeps the
// adapter from disappearing while clients are instantiated; clients do
// their own per-operation opens afterwards, so the handle can be closed
// once setup is done.
type Adapter struct {
	Index int

	bus  i2c.Bus
	open bool
}

// Open finds the controller and its bound i2c adapter, retrying the
// adapter lookup with backoff in case the bus driver is still probing.
func (r *Registry) Open() (*Adapter, error) {
	dev, err := pci.Find(r.Vendor, r.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	wait := r.Wait
	if wait == 0 {
		wait = 2 * time.Second
	}
	b := &backoff.Backoff{
		Min:    10 * time.Millisecond,
		Max:    250 * time.Millisecond,
		Factor: 2,
	}
	deadline := time.Now().Add(wait)
	var index int
	for {
		index, err = dev.I2cAdapter()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %v", ErrBusy, err)
		}
		time.Sleep(b.Duration())
	}
	a := &Adapter{Index: index}
	if err = a.bus.Open(index); err != nil {
		return nil, fmt.Errorf("%w: i2c-%d: %v", ErrBusy, index, err)
	}
	a.open = true
	return a, nil
}

// Close releases the adapter handle. Clients created from the adapter
// stay valid.
func (a *Adapter) Close() error {
	if !a.open {
		return nil
	}
	a.open = false
	return a.bus.Close()
}

// Client owns one dimmer.
type Client struct {
	Addr int

	conn  regIO
	slots *[16]led.Slot

	mutex sync.Mutex
	gone  bool
}

// NewClient probes the dimmer at addr, programs its prescalers and slot
// table, and returns the client. A probe failure maps to ErrNotFound so
// a missing chip reads differently from a programming error.
func (a *Adapter) NewClient(addr int, slots *[16]led.Slot) (*Client, error) {
	return newClient(smbusConn{bus: a.Index, addr: addr}, addr, slots)
}

func newClient(conn regIO, addr int, slots *[16]led.Slot) (*Client, error) {
	if err := led.Validate(slots); err != nil {
		return nil, err
	}
	c := &Client{Addr: addr, conn: conn, slots: slots}
	if _, err := conn.Read(regInput0); err != nil {
		return nil, fmt.Errorf("%w: %#02x: %v", ErrNotFound, addr, err)
	}
	if err := c.init(); err != nil {
		return nil, fmt.Errorf("pca9532 %#02x: %v", addr, err)
	}
	return c, nil
}

// init zeroes both PWM engines and programs the defined slots. None
// slots keep whatever selector they have.
func (c *Client) init() error {
	for _, reg := range []uint8{regPsc0, regPwm0, regPsc1, regPwm1} {
		if err := c.conn.Write(reg, 0); err != nil {
			return err
		}
	}
	for i, s := range c.slots {
		if s.Type == led.None {
			continue
		}
		code := byte(lsOff)
		if s.State == led.On {
			code = lsOn
		}
		if err := c.setSelector(i, code); err != nil {
			return err
		}
	}
	return nil
}

// setSelector read-modify-writes one slot's two selector bits.
func (c *Client) setSelector(slot int, code byte) error {
	reg := uint8(regLs0 + slot/4)
	shift := uint(slot%4) * 2
	v, err := c.conn.Read(reg)
	if err != nil {
		return err
	}
	v = v&^(3<<shift) | code<<shift
	return c.conn.Write(reg, v)
}

// Leds returns the names of the client's indicators, in slot order.
func (c *Client) Leds() []string {
	return led.Names(c.slots)
}

// SetLed drives a named indicator.
func (c *Client) SetLed(name string, on bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.gone {
		return fmt.Errorf("pca9532 %#02x: unregistered", c.Addr)
	}
	for i, s := range c.slots {
		if s.Type != led.Led || s.Name != name {
			continue
		}
		code := byte(lsOff)
		if on {
			code = lsOn
		}
		return c.setSelector(i, code)
	}
	return fmt.Errorf("%w: %q", ErrNoLed, name)
}

// Unregister darkens the client's indicators and retires it. Spare Gpio
// lines and None slots are left as they are. Safe to call more than
// once.
func (c *Client) Unregister() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.gone {
		return nil
	}
	c.gone = true
	var err error
	for i, s := range c.slots {
		if s.Type != led.Led {
			continue
		}
		if terr := c.setSelector(i, lsOff); terr != nil && err == nil {
			err = terr
		}
	}
	return err
}
