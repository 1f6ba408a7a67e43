// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package args provides types for the redis RPC arguments.
package args

type Assign struct {
	Key    string
	AtSock string
	Name   string
}

type Unassign struct {
	Key string
}

type Hset struct {
	Key, Field string
	Value      []byte
}
