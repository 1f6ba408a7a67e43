// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pidfile records daemon pids in /run/goes/pids
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const Dir = "/run/goes/pids"

func New(name string) (string, error) {
	if err := os.MkdirAll(Dir, os.FileMode(0755)); err != nil {
		return "", err
	}
	fn := Path(name)
	f, err := os.Create(fn)
	if err != nil {
		return "", err
	}
	defer f.Close()
	fmt.Fprintln(f, os.Getpid())
	return fn, nil
}

// Path returns Dir + "/" + name if name isn't already prefaced by Dir
func Path(name string) string {
	if strings.HasPrefix(name, Dir) {
		return name
	}
	return filepath.Join(Dir, name)
}

func RemoveAll() {
	pids, err := filepath.Glob(filepath.Join(Dir, "*"))
	if err == nil {
		for _, fn := range pids {
			os.Remove(fn)
		}
		os.Remove(Dir)
	}
}
