// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package goes is the command multiplexer of the goes-thecus-n5550 machine.
// A machine main plots its commands in a Goes.ByName map; Main then runs
// the named command, forking twice for daemons to disassociate them from
// the initiating tty and process.
package goes

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/ipilcher/n5550-v2/cmd"
	"github.com/ipilcher/n5550-v2/external/log"
	"github.com/ipilcher/n5550-v2/internal/prog"
	"github.com/ipilcher/n5550-v2/lang"
	"github.com/ipilcher/n5550-v2/pidfile"
)

const daemonFlag = "__GOES_DAEMON__"

var (
	// WG tracks goroutines spawned by daemons; each must finish before
	// the daemon process exits.
	WG sync.WaitGroup

	// Stop is closed to tell daemon goroutines to return.
	Stop = make(chan struct{})
)

type Goes struct {
	NAME, USAGE  string
	APROPOS, MAN lang.Alt

	ByName map[string]cmd.Cmd

	names []string
}

type closer interface {
	Close() error
}

type goeser interface {
	Goes(*Goes)
}

func (g *Goes) String() string { return g.NAME }

// Names returns the sorted command names.
func (g *Goes) Names() []string {
	if len(g.names) != len(g.ByName) {
		g.names = make([]string, 0, len(g.ByName))
		for k := range g.ByName {
			g.names = append(g.names, k)
		}
		sort.Strings(g.names)
	}
	return g.names
}

// Complete a command name from the given prefix.
func (g *Goes) Complete(args ...string) (ss []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = args[len(args)-1]
	}
	for _, name := range g.Names() {
		if strings.HasPrefix(name, prefix) {
			ss = append(ss, name)
		}
	}
	for helper := range cmd.Helpers {
		if strings.HasPrefix(helper, prefix) {
			ss = append(ss, helper)
		}
	}
	sort.Strings(ss)
	return
}

// Fork returns an exec.Cmd that reruns this program with the given goes
// command as args.
func (g *Goes) Fork(args ...string) *exec.Cmd {
	c := prog.Command(args...)
	c.Env = prog.DaemonEnv()
	return c
}

// Main runs the args[0] command in the current context. When run w/o args,
// this uses os.Args and exits instead of returns on error.
//
// If the args have "-h", "-help", or "--help", this prints the command help
// text; similarly for "-apropos", "-complete", "-man", and "-usage".
//
// If the command is a daemon, this fork execs itself twice to disassociate
// the daemon from the tty and initiating process.
func (g *Goes) Main(args ...string) (err error) {
	var isDaemon bool

	if len(args) == 0 {
		args = os.Args
		if len(args) == 0 {
			return
		}
		if base := filepath.Base(args[0]); base == g.NAME ||
			args[0] == prog.Install {
			args = args[1:]
		}
		defer func() {
			if isDaemon {
				if err != nil {
					log.Print("daemon", "err", err)
				}
			} else if err != nil && err != io.EOF {
				fmt.Fprintf(os.Stderr, "%s: %v\n", g.NAME, err)
				os.Exit(1)
			}
		}()
	}
	if len(args) == 0 {
		fmt.Println(Usage(g))
		return
	}

	cmd.Swap(args)
	g.shift(args)

	name := args[0]
	args = args[1:]
	switch name {
	case "apropos":
		return g.apropos(args...)
	case "complete":
		for _, s := range g.Complete(args...) {
			fmt.Println(s)
		}
		return
	case "help":
		return g.help(args...)
	case "man":
		return g.man(args...)
	case "usage":
		return g.usage(args...)
	}

	v, found := g.ByName[name]
	if !found {
		return fmt.Errorf("%s: command not found", name)
	}
	if method, found := v.(goeser); found {
		method.Goes(g)
	}
	if !cmd.WhatKind(v).IsDaemon() {
		return v.Main(args...)
	}

	isDaemon = true
	switch os.Getenv(daemonFlag) {
	case "":
		c := g.Fork(append([]string{name}, args...)...)
		c.Stdin = nil
		c.Stdout = nil
		c.Stderr = nil
		c.Env = append(c.Env, daemonFlag+"=child")
		c.Dir = "/"
		c.SysProcAttr = &syscall.SysProcAttr{
			Setsid: true,
			Pgid:   0,
		}
		err = c.Start()
	case "child":
		syscall.Umask(002)
		rout, wout, terr := os.Pipe()
		if terr != nil {
			err = terr
			return
		}
		rerr, werr, terr := os.Pipe()
		if terr != nil {
			err = terr
			return
		}
		id := fmt.Sprintf("%s.%s[%d]", g.NAME, name, os.Getpid())
		go log.LinesFrom(rout, id, "info")
		go log.LinesFrom(rerr, id, "err")
		c := g.Fork(append([]string{name}, args...)...)
		c.Stdin = nil
		c.Stdout = wout
		c.Stderr = werr
		c.Env = append(c.Env, daemonFlag+"=grandchild")
		c.SysProcAttr = &syscall.SysProcAttr{
			Setsid: true,
			Pgid:   0,
		}
		signal.Ignore(syscall.SIGTERM)
		err = c.Start()
	case "grandchild":
		var pidfn string
		pidfn, err = pidfile.New(name)
		if err != nil {
			return
		}
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGTERM, syscall.SIGABRT)
		go wait(v, pidfn, sigch)
		err = v.Main(args...)
		sigch <- syscall.SIGABRT
	}
	return
}

func wait(v cmd.Cmd, pidfn string, ch chan os.Signal) {
	for sig := range ch {
		if sig == syscall.SIGTERM {
			if method, found := v.(closer); found {
				if err := method.Close(); err != nil {
					log.Print("daemon", "err", err)
				}
			}
			close(Stop)
			WG.Wait()
			os.Remove(pidfn)
			os.Exit(0)
		}
		os.Remove(pidfn)
		break
	}
}

// swap moves a helper prefaced by its subject command to the front, so
// "CMD help" becomes "help CMD".
func (g *Goes) swap(args []string) {
	cmd.Swap(args)
}

// shift pulls a trailing helper to the front, so "CMD usage" becomes
// "usage CMD".
func (g *Goes) shift(args []string) {
	for i := range args {
		if _, found := cmd.Helpers[args[i]]; found {
			name := args[i]
			copy(args[1:i+1], args[:i])
			args[0] = name
			break
		}
	}
}
