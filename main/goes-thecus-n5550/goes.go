// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package main

import (
	"github.com/ipilcher/n5550-v2"
	"github.com/ipilcher/n5550-v2/cmd"
	"github.com/ipilcher/n5550-v2/cmd/daemons"
	"github.com/ipilcher/n5550-v2/cmd/iocmd"
	"github.com/ipilcher/n5550-v2/cmd/ledcmd"
	"github.com/ipilcher/n5550-v2/cmd/n5550d"
	"github.com/ipilcher/n5550-v2/cmd/redisd"
	"github.com/ipilcher/n5550-v2/cmd/start"
	"github.com/ipilcher/n5550-v2/cmd/stop"
	"github.com/ipilcher/n5550-v2/lang"
)

const name = "thecus-n5550"

var Goes = &goes.Goes{
	NAME: "goes-" + name,
	APROPOS: lang.Alt{
		lang.EnUS: "the thecus n5550 goes machine",
	},
	ByName: map[string]cmd.Cmd{
		"daemons": daemons.Admin,
		"goes-daemons": &daemons.Server{
			Init: [][]string{
				[]string{"redisd"},
				[]string{"n5550d"},
			},
		},
		"io":     iocmd.Command{},
		"led":    ledcmd.Command{},
		"n5550d": &n5550d.Command{},
		"redisd": &redisd.Command{
			Machine: name,
		},
		"start": start.New(),
		"stop":  &stop.Command{},
	},
}
