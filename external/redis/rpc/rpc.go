// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package rpc proxies redis requests to an assigned handler's atsock.
package rpc

import (
	"github.com/ipilcher/n5550-v2/external/atsock"
	"github.com/ipilcher/n5550-v2/external/redis/rpc/args"
	"github.com/ipilcher/n5550-v2/external/redis/rpc/reply"
)

type Rpc struct{ AtSock, Name string }

func New(suffix, name string) *Rpc { return &Rpc{suffix, name} }

func (rpc *Rpc) Hset(key, id string, value []byte) (int, error) {
	cl, err := atsock.NewRpcClient(rpc.AtSock)
	if err != nil {
		return 0, err
	}
	defer cl.Close()
	var r reply.Hset
	err = cl.Call(rpc.Name+".Hset", args.Hset{Key: key, Field: id, Value: value}, &r)
	if err != nil {
		return 0, err
	}
	return r.Redis(), nil
}
