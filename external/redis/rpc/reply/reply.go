// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package reply provides types for the redis RPC replies.
package reply

type Hset int

func (r Hset) Redis() int { return int(r) }
