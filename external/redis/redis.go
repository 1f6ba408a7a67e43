// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package redis provides a client to the machine's redisd unix socket.
package redis

import (
	"fmt"
	"net"
	"net/rpc"
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/ipilcher/n5550-v2/external/atsock"
	"github.com/ipilcher/n5550-v2/external/redis/rpc/args"
)

const rdtimeout = 10 * time.Second
const wrtimeout = 500 * time.Millisecond

// DefaultHash is the machine hash; the machine main sets this before
// running any command.
var DefaultHash string

var empty = struct{}{}

// IsReady blocks until redisd publishes "redis.ready: true" or 10s.
func IsReady() error {
	return Hwait(DefaultHash, "redis.ready", "true", 10*time.Second)
}

func NewRedisRegAtSock() (*rpc.Client, error) {
	return atsock.NewRpcClient("redis.reg")
}

func NewRedisdAtSock() (net.Conn, error) {
	return atsock.Dial("redisd")
}

// Assign an RPC handler for the given key.
func Assign(key, sockname, name string) error {
	cl, err := NewRedisRegAtSock()
	if err != nil {
		return err
	}
	defer cl.Close()
	return cl.Call("Reg.Assign", args.Assign{Key: key, AtSock: sockname, Name: name}, &empty)
}

// Unassign an RPC handler for the given key.
func Unassign(key string) error {
	cl, err := NewRedisRegAtSock()
	if err != nil {
		return err
	}
	defer cl.Close()
	return cl.Call("Reg.Unassign", args.Unassign{Key: key}, &empty)
}

// Connect to the redis file socket.
func Connect() (redis.Conn, error) {
	conn, err := NewRedisdAtSock()
	if err != nil {
		return nil, err
	}
	return redis.NewConn(conn, rdtimeout, wrtimeout), nil
}

func Hget(key, field string) (s string, err error) {
	if len(key) == 0 {
		key = DefaultHash
	}
	conn, err := Connect()
	if err != nil {
		return
	}
	defer conn.Close()
	v, err := conn.Do("HGET", key, field)
	if v != nil && err == nil {
		s = vstring(v)
	}
	return
}

func Hkeys(key string) (keys []string, err error) {
	if len(key) == 0 {
		key = DefaultHash
	}
	conn, err := Connect()
	if err != nil {
		return
	}
	defer conn.Close()
	ret, err := conn.Do("HKEYS", key)
	if ret != nil && err == nil {
		vs := ret.([]interface{})
		keys = make([]string, 0, len(vs))
		for _, v := range vs {
			keys = append(keys, vstring(v))
		}
	}
	return
}

func Hset(key, field string, v interface{}) (i int, err error) {
	if len(key) == 0 {
		key = DefaultHash
	}
	conn, err := Connect()
	if err != nil {
		return
	}
	defer conn.Close()
	ret, err := conn.Do("HSET", key, field, v)
	if ret != nil && err == nil {
		i = int(ret.(int64))
	}
	return
}

// Hwait for the given (key, field) to have value or anything if value is "".
func Hwait(key, field, value string, dur time.Duration) error {
	const t = 250 * time.Millisecond
	for end := time.Now().Add(dur); time.Now().Before(end); time.Sleep(t) {
		s, err := Hget(key, field)
		if err == nil && len(s) > 0 {
			if len(value) > 0 && s != value {
				err = fmt.Errorf("(%s,%s) is %q instead of %q",
					key, field, s, value)
			}
			return err
		}
	}
	return fmt.Errorf("(%s,%s) timeout", key, field)
}

func vstring(v interface{}) (s string) {
	type stringer interface {
		String() string
	}
	switch t := v.(type) {
	case []byte:
		s = string(t)
	case string:
		s = t
	default:
		if method, found := t.(stringer); found {
			s = method.String()
		} else {
			s = fmt.Sprint(t)
		}
	}
	return
}
