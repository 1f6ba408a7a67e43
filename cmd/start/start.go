// Copyright 2016-2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package start provides the named command that runs the redis server
// followed by the machine's other daemons. If the PID is 1, start
// doesn't return; it reaps orphans and waits on the daemons.
package start

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/ramr/go-reaper"

	"github.com/ipilcher/n5550-v2"
	"github.com/ipilcher/n5550-v2/external/parms"
	"github.com/ipilcher/n5550-v2/internal/assert"
	"github.com/ipilcher/n5550-v2/internal/prog"
	"github.com/ipilcher/n5550-v2/lang"
)

const EtcGoesStart = "/etc/goes/start"

func New() *Command { return new(Command) }

type Command struct {
	// Machines may use Hook to run something before redisd and other
	// daemons.
	Hook func() error

	g *goes.Goes
}

func (*Command) String() string { return "start" }

func (*Command) Usage() string {
	return "start [-start=SCRIPT] [REDIS OPTIONS]..."
}

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "start this goes machine",
	}
}

func (*Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Start a redis server followed by the machine and its embedded daemons.

OPTIONS
	-start SCRIPT
		Specifies the machine's configuration script that's run
		after start of all daemons.
		default: /etc/goes/start

SEE ALSO
	redisd`,
	}
}

func (c *Command) Goes(g *goes.Goes) { c.g = g }

func (c *Command) Main(args ...string) error {
	parm, args := parms.New(args, "-start")

	err := assert.Root()
	if err != nil {
		return err
	}
	if prog.Name() != prog.Install && prog.Base() != "init" {
		return fmt.Errorf("use `%s start`", prog.Install)
	}
	if c.Hook != nil {
		if err = c.Hook(); err != nil {
			return err
		}
	}
	daemons := exec.Command(prog.Name(), args...)
	daemons.Args[0] = "goes-daemons"
	daemons.Stdin = nil
	daemons.Stdout = nil
	daemons.Stderr = nil
	daemons.Dir = "/"
	daemons.Env = []string{
		"PATH=" + prog.Path(),
		"TERM=linux",
	}
	daemons.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
		Pgid:   0,
	}
	err = daemons.Start()
	if err != nil {
		return err
	}

	start := parm.ByName["-start"]
	if len(start) == 0 {
		if _, xerr := os.Stat(EtcGoesStart); xerr == nil {
			start = EtcGoesStart
		}
	}
	if len(start) > 0 {
		if err = runScript(start); err != nil {
			return err
		}
	}

	if os.Getpid() != 1 {
		return nil
	}

	go reaper.Reap()

	return daemons.Wait()
}

// runScript runs the machine configuration script through the system
// shell with the goes commands on PATH.
func runScript(fn string) error {
	x := exec.Command("/bin/sh", fn)
	x.Stdin = os.Stdin
	x.Stdout = os.Stdout
	x.Stderr = os.Stderr
	x.Dir = "/"
	x.Env = []string{
		"PATH=" + prog.Path(),
		"TERM=linux",
	}
	return x.Run()
}
