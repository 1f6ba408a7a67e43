// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package assert has command preconditions.
package assert

import (
	"os"
	"syscall"
)

// Root returns EPERM unless the effective user is root.
func Root() error {
	if os.Geteuid() != 0 {
		return syscall.EPERM
	}
	return nil
}
