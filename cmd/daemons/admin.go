// Copyright 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package daemons

import (
	"fmt"
	"os"

	"github.com/ipilcher/n5550-v2"
	"github.com/ipilcher/n5550-v2/cmd"
	"github.com/ipilcher/n5550-v2/external/atsock"
	"github.com/ipilcher/n5550-v2/lang"
)

var Admin = &goes.Goes{
	NAME:  "daemons",
	USAGE: "daemons COMMAND",
	APROPOS: lang.Alt{
		lang.EnUS: "daemon admin",
	},
	ByName: map[string]cmd.Cmd{
		"log":     Log{},
		"restart": Restart{},
		"start":   Start{},
		"status":  Status{},
		"stop":    Stop{},
	},
}

var empty = struct{}{}

// call runs the named method on the goes-daemons supervisor.
func call(method string, args interface{}, reply interface{}) error {
	cl, err := atsock.NewRpcClient(sockname())
	if err != nil {
		return err
	}
	defer cl.Close()
	return cl.Call(method, args, reply)
}

type Log struct{}
type Restart struct{}
type Status struct{}
type Start struct{}
type Stop struct{}

func (Log) String() string { return "log" }

func (Log) Usage() string { return "daemons log [TEXT]..." }

func (Log) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "append and show daemon log",
	}
}

func (Log) Main(args ...string) error {
	var s string
	err := call("Daemons.Log", args, &s)
	if err == nil {
		os.Stdout.WriteString(s)
	}
	return err
}

func (Restart) String() string { return "restart" }

func (Restart) Usage() string { return "daemons restart [PID]..." }

func (Restart) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "daemon restart",
	}
}

func (Restart) Main(args ...string) error {
	pids, err := pids(args)
	if err != nil {
		return err
	}
	return call("Daemons.Restart", pids, &empty)
}

func (Start) String() string { return "start" }

func (Start) Usage() string { return "daemons start DAEMON [ARG]..." }

func (Start) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "daemon start",
	}
}

func (Start) Main(args ...string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing DAEMON [ARG]...")
	}
	return call("Daemons.Start", args, &empty)
}

func (Status) String() string { return "status" }

func (Status) Usage() string { return "daemons status" }

func (Status) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "show daemons",
	}
}

func (Status) Main(args ...string) error {
	var s string
	err := call("Daemons.List", struct{}{}, &s)
	if err == nil {
		os.Stdout.WriteString(s)
	}
	return err
}

func (Stop) String() string { return "stop" }

func (Stop) Usage() string { return "daemons stop [PID]..." }

func (Stop) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "daemon stop",
	}
}

func (Stop) Main(args ...string) error {
	pids, err := pids(args)
	if err != nil {
		return err
	}
	return call("Daemons.Stop", pids, &empty)
}

func pids(args []string) ([]int, error) {
	if len(args) == 0 {
		return []int{}, nil
	}
	pids := make([]int, len(args))
	for i, arg := range args {
		var pid int
		_, err := fmt.Sscan(arg, &pid)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", arg, err)
		}
		pids[i] = pid
	}
	return pids, nil
}
