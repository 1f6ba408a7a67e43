// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package board

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/ipilcher/n5550-v2/internal/n5550/led"
)

// fixture records every bring-up event in order and can be told to fail
// any one stage.
type fixture struct {
	events []string

	openErr     error
	clientErr   map[int]error
	pinsErr     error
	registerErr error
}

func newFixture() *fixture {
	return &fixture{clientErr: make(map[int]error)}
}

func (f *fixture) config() Config {
	return Config{
		Expanders: (*fakeBus)(f),
		Pins:      (*fakePins)(f),
		DiskLeds:  (*fakeRegistry)(f),
	}
}

type fakeBus fixture

func (f *fakeBus) Open() (Adapter, error) {
	(*fixture)(f).events = append((*fixture)(f).events, "open")
	if f.openErr != nil {
		return nil, f.openErr
	}
	return (*fakeAdapter)(f), nil
}

type fakeAdapter fixture

func (f *fakeAdapter) NewClient(addr int, slots *[16]led.Slot) (Client, error) {
	(*fixture)(f).events = append((*fixture)(f).events,
		fmt.Sprintf("client %#02x", addr))
	if err := f.clientErr[addr]; err != nil {
		return nil, err
	}
	return &fakeClient{f: (*fixture)(f), addr: addr}, nil
}

func (f *fakeAdapter) Close() error {
	(*fixture)(f).events = append((*fixture)(f).events, "adapter close")
	return nil
}

type fakeClient struct {
	f    *fixture
	addr int
}

func (c *fakeClient) Unregister() error {
	c.f.events = append(c.f.events,
		fmt.Sprintf("unregister %#02x", c.addr))
	return nil
}

type fakePins fixture

func (f *fakePins) Enable() error {
	(*fixture)(f).events = append((*fixture)(f).events, "pins")
	return f.pinsErr
}

type fakeRegistry fixture

func (f *fakeRegistry) Register(table []led.DiskLed) (Device, error) {
	(*fixture)(f).events = append((*fixture)(f).events, "leds")
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return (*fakeDevice)(f), nil
}

type fakeDevice fixture

func (f *fakeDevice) Unregister() error {
	(*fixture)(f).events = append((*fixture)(f).events, "leds unregister")
	return nil
}

func TestSetupTeardown(t *testing.T) {
	f := newFixture()
	b := New(f.config())

	if err := b.Setup(); err != nil {
		t.Fatal(err)
	}
	if b.State() != LedsUp {
		t.Fatalf("state %s, want leds-up", b.State())
	}
	want := []string{
		"open",
		"client 0x64",
		"client 0x62",
		"adapter close",
		"pins",
		"leds",
	}
	if !reflect.DeepEqual(f.events, want) {
		t.Fatalf("events %v, want %v", f.events, want)
	}
	if c0, c1 := b.Clients(); c0 == nil || c1 == nil {
		t.Fatal("clients not retained")
	}
	if b.DiskLedDevice() == nil {
		t.Fatal("led device not retained")
	}

	// a second setup is rejected while up
	if err := b.Setup(); err == nil {
		t.Fatal("setup while up did not fail")
	}

	f.events = nil
	b.Teardown()
	if b.State() != Uninit {
		t.Fatalf("state %s, want uninit", b.State())
	}
	want = []string{
		"leds unregister",
		"unregister 0x64",
		"unregister 0x62",
	}
	if !reflect.DeepEqual(f.events, want) {
		t.Fatalf("events %v, want %v", f.events, want)
	}

	// teardown of a down board is a no-op
	f.events = nil
	b.Teardown()
	if len(f.events) != 0 {
		t.Fatalf("unexpected events %v", f.events)
	}
}

func TestSetupSecondClientFails(t *testing.T) {
	f := newFixture()
	boom := errors.New("no ack from 0x62")
	f.clientErr[StatusAddr] = boom
	b := New(f.config())

	if err := b.Setup(); !errors.Is(err, boom) {
		t.Fatalf("err %v, want %v", err, boom)
	}
	if b.State() != Uninit {
		t.Fatalf("state %s, want uninit", b.State())
	}
	want := []string{
		"open",
		"client 0x64",
		"client 0x62",
		"unregister 0x64",
		"adapter close",
	}
	if !reflect.DeepEqual(f.events, want) {
		t.Fatalf("events %v, want %v", f.events, want)
	}

	// the board is reusable after a failed setup
	f.clientErr = map[int]error{}
	f.events = nil
	if err := b.Setup(); err != nil {
		t.Fatal(err)
	}
	if b.State() != LedsUp {
		t.Fatalf("state %s, want leds-up", b.State())
	}
}

func TestSetupAdapterFails(t *testing.T) {
	f := newFixture()
	boom := errors.New("adapter not ready")
	f.openErr = boom
	b := New(f.config())

	if err := b.Setup(); !errors.Is(err, boom) {
		t.Fatalf("err %v, want %v", err, boom)
	}
	if b.State() != Uninit {
		t.Fatalf("state %s, want uninit", b.State())
	}
	if want := []string{"open"}; !reflect.DeepEqual(f.events, want) {
		t.Fatalf("events %v, want %v", f.events, want)
	}
}

func TestSetupPinsFail(t *testing.T) {
	f := newFixture()
	boom := errors.New("no lpc bridge")
	f.pinsErr = boom
	b := New(f.config())

	if err := b.Setup(); !errors.Is(err, boom) {
		t.Fatalf("err %v, want %v", err, boom)
	}
	if b.State() != Uninit {
		t.Fatalf("state %s, want uninit", b.State())
	}
	want := []string{
		"open",
		"client 0x64",
		"client 0x62",
		"adapter close",
		"pins",
		"unregister 0x64",
		"unregister 0x62",
	}
	if !reflect.DeepEqual(f.events, want) {
		t.Fatalf("events %v, want %v", f.events, want)
	}
}

func TestSetupLedsFail(t *testing.T) {
	f := newFixture()
	boom := errors.New("no gpio chip")
	f.registerErr = boom
	b := New(f.config())

	if err := b.Setup(); !errors.Is(err, boom) {
		t.Fatalf("err %v, want %v", err, boom)
	}
	if b.State() != Uninit {
		t.Fatalf("state %s, want uninit", b.State())
	}
	want := []string{
		"open",
		"client 0x64",
		"client 0x62",
		"adapter close",
		"pins",
		"leds",
		"unregister 0x64",
		"unregister 0x62",
	}
	if !reflect.DeepEqual(f.events, want) {
		t.Fatalf("events %v, want %v", f.events, want)
	}
}
