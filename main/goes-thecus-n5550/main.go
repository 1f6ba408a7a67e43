// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// This is a goes machine for the Thecus N5550 NAS, run as daemons
// within another distro.
package main

import (
	"fmt"
	"os"

	"github.com/ipilcher/n5550-v2/external/redis"
)

func main() {
	redis.DefaultHash = name
	err := Goes.Main()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
