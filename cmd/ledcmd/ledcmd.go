// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package ledcmd provides the named command that shows and drives the
// board's indicators through the n5550d redis hash.
package ledcmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ipilcher/n5550-v2/external/redis"
	"github.com/ipilcher/n5550-v2/lang"
)

type Command struct{}

func (Command) String() string { return "led" }

func (Command) Usage() string { return "led [NAME [on | off]]" }

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "show or set board indicators",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Without arguments, list the board's indicators and their state.
	With a NAME, show that indicator; with NAME and a state, drive
	it.

	The green disk activity LEDs follow disk traffic and can't be
	set.

EXAMPLES
	led
	led fail
	led fail on

SEE ALSO
	n5550d`,
	}
}

func (Command) Main(args ...string) error {
	switch len(args) {
	case 0:
		keys, err := redis.Hkeys(redis.DefaultHash)
		if err != nil {
			return err
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !strings.HasPrefix(k, "led.") {
				continue
			}
			s, err := redis.Hget(redis.DefaultHash, k)
			if err != nil {
				return err
			}
			fmt.Print(strings.TrimPrefix(k, "led."), ": ", s,
				"\n")
		}
		return nil
	case 1:
		s, err := redis.Hget(redis.DefaultHash, "led."+args[0])
		if err != nil {
			return err
		}
		fmt.Println(s)
		return nil
	case 2:
		_, err := redis.Hset(redis.DefaultHash, "led."+args[0],
			args[1])
		return err
	}
	return fmt.Errorf("%v: unexpected", args[2:])
}

func (Command) Complete(args ...string) (c []string) {
	if len(args) == 2 {
		for _, s := range []string{"off", "on"} {
			if strings.HasPrefix(s, args[1]) {
				c = append(c, s)
			}
		}
		return
	}
	if len(args) > 2 {
		return
	}
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	keys, err := redis.Hkeys(redis.DefaultHash)
	if err != nil {
		return
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := strings.TrimPrefix(k, "led.")
		if name != k && strings.HasPrefix(name, prefix) {
			c = append(c, name)
		}
	}
	return
}
