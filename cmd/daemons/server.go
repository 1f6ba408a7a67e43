// Copyright 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package daemons

import (
	"net/rpc"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipilcher/n5550-v2"
	"github.com/ipilcher/n5550-v2/cmd"
	"github.com/ipilcher/n5550-v2/external/atsock"
	"github.com/ipilcher/n5550-v2/lang"
)

type Server struct {
	// Init lists goes command + args for the daemons run from start.
	// The machine runs redisd first; dependents like n5550d wait on
	// the machine hash with
	//	redis.IsReady()
	Init [][]string
	Daemons
}

func (*Server) String() string { return "goes-daemons" }

func (*Server) Usage() string {
	return "goes-daemons [OPTIONS]..."
}

func (*Server) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "start daemons and wait for their exit",
	}
}

func (c *Server) Goes(g *goes.Goes) { c.Daemons.goes = g }

func (*Server) Kind() cmd.Kind { return cmd.Hidden }

func (c *Server) Main(args ...string) error {
	var err error

	c.Daemons.init()

	sig := make(chan os.Signal)
	signal.Notify(sig, syscall.SIGTERM)
	defer signal.Stop(sig)

	c.rpc, err = atsock.NewRpcServer(sockname())
	if err != nil {
		return err
	}
	defer c.rpc.Close()

	for _, dargs := range c.Init {
		c.Daemons.start(0, dargs...)
	}

	rpc.Register(&c.Daemons)

	for {
		select {
		case <-c.Daemons.done:
			// delay for rpc Stop reply
			time.Sleep(100 * time.Millisecond)
			return nil
		case <-sig:
			c.Daemons.Stop([]int{}, &empty)
		}
	}
}
