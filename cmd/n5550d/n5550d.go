// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package n5550d brings up the Thecus N5550's LED hardware and serves
// it over redis. The daemon publishes board state under "n5550." and
// the indicators under "led.", accepts "led." hash sets to drive the
// PCA9532 indicators, and blinks the green activity LEDs from
// /proc/diskstats deltas.
package n5550d

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net/rpc"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ipilcher/n5550-v2/cmd"
	"github.com/ipilcher/n5550-v2/external/atsock"
	"github.com/ipilcher/n5550-v2/external/flags"
	"github.com/ipilcher/n5550-v2/external/redis"
	"github.com/ipilcher/n5550-v2/external/redis/publisher"
	"github.com/ipilcher/n5550-v2/external/redis/rpc/args"
	"github.com/ipilcher/n5550-v2/external/redis/rpc/reply"
	"github.com/ipilcher/n5550-v2/internal/n5550/board"
	"github.com/ipilcher/n5550-v2/internal/n5550/dmi"
	"github.com/ipilcher/n5550-v2/internal/n5550/ich"
	"github.com/ipilcher/n5550-v2/internal/n5550/led"
	"github.com/ipilcher/n5550-v2/internal/n5550/pca9532"
	"github.com/ipilcher/n5550-v2/lang"
)

const Name = "n5550d"

var pollInterval = time.Second / 4

// DiskstatsPath is the activity source; tests point it at a fixture.
var DiskstatsPath = "/proc/diskstats"

type Command struct {
	Info
	Init func()
	init sync.Once
}

type Info struct {
	mutex sync.Mutex
	rpc   *atsock.RpcServer
	pub   *publisher.Publisher
	stop  chan struct{}
	board *board.Board
	disks *led.GpioLeds
	leds  map[string]setter
	last  []uint64
	lasts map[string]string
}

// setter maps a short led name back to the client that owns it.
type setter struct {
	client *pca9532.Client
	name   string
}

func (*Command) String() string { return Name }

func (*Command) Usage() string { return Name + " [-force]" }

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "thecus n5550 board daemon",
	}
}

func (*Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Initialize the Thecus N5550's LED hardware, then publish it to
	redis and blink the green disk activity LEDs from diskstats.

	The daemon refuses to run on anything that doesn't carry the
	N5550's DMI identity.

OPTIONS
	-force
		skip the DMI identity check

SEE ALSO
	led, redisd`,
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(args ...string) error {
	if c.Init != nil {
		c.init.Do(c.Init)
	}

	flag, args := flags.New(args, "-force")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}
	if !flag.ByName["-force"] && !dmi.Match() {
		return errors.New("this is not a Thecus N5550 (-force overrides)")
	}

	err := redis.IsReady()
	if err != nil {
		return err
	}

	c.stop = make(chan struct{})
	c.lasts = make(map[string]string)

	if c.pub, err = publisher.New(); err != nil {
		return err
	}

	b := board.New(board.Config{
		Expanders: expanderBus{pca9532.Registry{
			Vendor: ich.VendorIntel,
			Device: ich.I2CDevice,
		}},
		Pins:     &ich.Enabler{},
		DiskLeds: ledRegistry{},
	})
	if err = b.Setup(); err != nil {
		return err
	}
	c.board = b
	defer c.teardown()

	c.leds = make(map[string]setter)
	diskStat, status := b.Clients()
	for _, cl := range []board.Client{diskStat, status} {
		pc, ok := cl.(*pca9532.Client)
		if !ok {
			continue
		}
		for _, name := range pc.Leds() {
			c.leds[short(name)] = setter{pc, name}
		}
	}
	c.disks, _ = b.DiskLedDevice().(*led.GpioLeds)

	if err = c.startRpc(); err != nil {
		return err
	}

	c.publishBoard()

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return nil
		case <-t.C:
			c.update()
		}
	}
}

// redisAssign is swapped out by tests.
var redisAssign = redis.Assign

// startRpc serves Info on the daemon's atsock and claims the "led."
// sub-hash; the sock doesn't outlive a failed claim.
func (c *Command) startRpc() (err error) {
	if c.rpc, err = atsock.NewRpcServer(Name); err != nil {
		return err
	}
	rpc.Register(&c.Info)
	err = redisAssign(redis.DefaultHash+":led.", Name, "Info")
	if err != nil {
		c.rpc.Close()
		c.rpc = nil
	}
	return err
}

func (c *Command) Close() error {
	close(c.stop)
	c.teardown()
	return nil
}

func (c *Command) teardown() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.board != nil {
		c.board.Teardown()
		c.board = nil
		c.disks = nil
		c.leds = nil
	}
}

func (c *Command) publishBoard() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.pub.Print("n5550.state: ", c.board.State())
	c.pub.Print("n5550.disk.led.trigger: ", led.DiskLedTrigger)
	if c.disks != nil {
		c.pub.Print("n5550.gpio.base: ", c.disks.Base)
		for i, pin := range c.disks.Pins {
			c.pub.Print("n5550.disk.", i, ".pin: ", pin)
		}
		for _, name := range c.disks.Names {
			c.set("led."+short(name), "off")
		}
	}
	names := make([]string, 0, len(c.leds))
	for name := range c.leds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.set("led."+name, "off")
	}
}

// update reads a round of disk activity and drives the green LEDs.
func (c *Command) update() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.disks == nil {
		return
	}
	io, err := diskIO(len(c.disks.Pins))
	if err != nil {
		return
	}
	values := make([]int, len(c.disks.Pins))
	for i := range values {
		if i < len(c.last) && io[i] != c.last[i] {
			values[i] = 1
		}
	}
	c.last = io
	c.disks.SetValues(values)
	for i, v := range values {
		k := fmt.Sprint("led.", short(c.disks.Names[i]))
		s := "off"
		if v != 0 {
			s = "on"
		}
		c.set(k, s)
	}
}

// diskIO sums sectors read and written per whole disk, smallest device
// names first, one entry per drive bay.
func diskIO(bays int) ([]uint64, error) {
	b, err := ioutil.ReadFile(DiskstatsPath)
	if err != nil {
		return nil, err
	}
	type stat struct {
		name string
		io   uint64
	}
	var stats []stat
	for _, line := range strings.Split(string(b), "\n") {
		f := strings.Fields(line)
		// major minor name reads rmerged rsect rms
		// writes wmerged wsect ...
		if len(f) < 10 || !isWholeDisk(f[2]) {
			continue
		}
		var rsect, wsect uint64
		fmt.Sscan(f[5], &rsect)
		fmt.Sscan(f[9], &wsect)
		stats = append(stats, stat{f[2], rsect + wsect})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].name < stats[j].name
	})
	io := make([]uint64, bays)
	for i := 0; i < bays && i < len(stats); i++ {
		io[i] = stats[i].io
	}
	return io, nil
}

// isWholeDisk matches sda..sdz but not partitions like sda1.
func isWholeDisk(name string) bool {
	return len(name) == 3 && strings.HasPrefix(name, "sd")
}

// short strips the "n5550:color:" prefix from an indicator name.
func short(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (i *Info) Hset(args args.Hset, reply *reply.Hset) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	name := strings.TrimPrefix(args.Field, "led.")
	s, found := i.leds[name]
	if !found {
		return fmt.Errorf("don't know how to set %s", args.Field)
	}
	v := strings.TrimRight(string(args.Value), "\n")
	on, err := parseOnOff(v)
	if err != nil {
		return err
	}
	if err = s.client.SetLed(s.name, on); err != nil {
		return err
	}
	v = "off"
	if on {
		v = "on"
	}
	i.set(args.Field, v)
	*reply = 1
	return nil
}

func (i *Info) set(key, value string) {
	if i.lasts[key] != value {
		i.pub.Print(key, ": ", value)
		i.lasts[key] = value
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "t", "yes", "1":
		return true, nil
	case "off", "false", "f", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q: not on or off", s)
}

// expanderBus, expanderAdapter and ledRegistry adapt the concrete
// hardware packages to the orchestrator's interfaces.
type expanderBus struct {
	reg pca9532.Registry
}

func (b expanderBus) Open() (board.Adapter, error) {
	a, err := b.reg.Open()
	if err != nil {
		return nil, err
	}
	return expanderAdapter{a}, nil
}

type expanderAdapter struct {
	a *pca9532.Adapter
}

func (x expanderAdapter) NewClient(addr int, slots *[16]led.Slot) (board.Client, error) {
	c, err := x.a.NewClient(addr, slots)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (x expanderAdapter) Close() error { return x.a.Close() }

type ledRegistry struct{}

func (ledRegistry) Register(table []led.DiskLed) (board.Device, error) {
	d, err := led.Register(table)
	if err != nil {
		return nil, err
	}
	return d, nil
}
