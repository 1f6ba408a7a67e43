// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package redisd provides the machine's redis server daemon. It is started
// before all other daemons and serves the single machine hash on the
// /run/goes/socks/redisd unix socket; there is no network listener.
package redisd

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	grs "github.com/platinasystems/go-redis-server"
	"github.com/ipilcher/n5550-v2"
	"github.com/ipilcher/n5550-v2/cmd"
	"github.com/ipilcher/n5550-v2/external/atsock"
	"github.com/ipilcher/n5550-v2/external/parms"
	"github.com/ipilcher/n5550-v2/external/redis"
	"github.com/ipilcher/n5550-v2/external/redis/publisher"
	"github.com/ipilcher/n5550-v2/external/redis/rpc/reg"
	"github.com/ipilcher/n5550-v2/internal/fields"
	"github.com/ipilcher/n5550-v2/lang"
)

type Command struct {
	// A non-empty Machine is published to redis as "machine: Machine"
	Machine string

	pubconn *net.UnixConn
	redisd  Redisd
}

// Redisd is the grs handler for the machine hash. Daemons feed the hash
// through the redis.pub unixgram socket and claim writable sub-hashes
// through the redis.reg RPC.
type Redisd struct {
	mutex sync.Mutex
	srv   *grs.Server
	reg   *reg.Reg

	assignments assignments

	published grs.HashHash

	cachedKeys    []string
	cachedSubkeys map[string][]string
}

func (*Command) String() string { return "redisd" }

func (*Command) Usage() string {
	return "redisd [-set FIELD=VALUE]..."
}

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "a redis server",
	}
}

func (*Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Run a redis server on the /run/goes/socks/redisd unix socket file.

OPTIONS
	-set FIELD=VALUE
		initialize the machine hash with the given field values`,
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(args ...string) error {
	parm, args := parms.New(args, "-set")
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected", args)
	}

	grs.Stderr = os.Stderr

	c.redisd.published = grs.HashHash{
		redis.DefaultHash: make(grs.HashValue),
	}

	cfg := grs.DefaultConfig()
	cfg = cfg.Proto("unix")
	cfg = cfg.Host("@redisd")
	cfg = cfg.Handler(&c.redisd)

	srv, err := grs.NewServer(cfg)
	if err != nil {
		return err
	}
	c.redisd.srv = srv

	c.redisd.reg, err = reg.New(c.redisd.assign, c.redisd.unassign)
	if err != nil {
		return err
	}

	c.pubconn, err = atsock.ListenUnixgram("redis.pub")
	if err != nil {
		return err
	}
	goes.WG.Add(1)
	go func() {
		defer goes.WG.Done()
		c.gopub()
	}()

	err = c.pubinit(fields.New(parm.ByName["-set"])...)
	if err != nil {
		return err
	}

	goes.WG.Add(1)
	go func() {
		defer goes.WG.Done()
		srv.Start()
	}()

	<-goes.Stop

	if c.redisd.reg != nil {
		c.redisd.reg.Srvr.Close()
	}
	if c.pubconn != nil {
		c.pubconn.Close()
	}

	c.redisd.mutex.Lock()
	if c.redisd.srv != nil {
		c.redisd.srv.Close()
		c.redisd.srv = nil
	}
	c.redisd.mutex.Unlock()

	return nil
}

// gopub reads "[KEY: ]FIELD: VALUE" datagrams from the redis.pub socket
// into the published hash until the socket closes.
func (c *Command) gopub() {
	b := make([]byte, os.Getpagesize())
	for {
		n, err := c.pubconn.Read(b)
		if err != nil {
			break
		}
		c.redisd.publish(bytes.TrimSpace(b[:n]))
	}
}

func (redisd *Redisd) publish(t []byte) {
	const sep = ": "
	var key, field string
	var value []byte
	x := bytes.Split(t, []byte(sep))
	switch len(x) {
	case 2:
		key = redis.DefaultHash
		field = string(x[0])
		value = x[1]
	case 3:
		key = string(x[0])
		field = string(x[1])
		value = x[2]
	default:
		return
	}
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	hv, found := redisd.published[key]
	if !found {
		hv = make(grs.HashValue)
		redisd.published[key] = hv
	}
	if field == "delete" {
		for k := range hv {
			if strings.HasPrefix(k, string(value)) {
				delete(hv, k)
			}
		}
	} else {
		if _, found := hv[field]; !found {
			hv[field] = make([]byte, 0, 256)
		} else {
			hv[field] = hv[field][:0]
		}
		hv[field] = append(hv[field], value...)
	}
	redisd.flushSubkeyCache(key)
}

// pubinit seeds the machine hash before any dependent daemon starts; the
// trailing "redis.ready" field is what redis.IsReady waits on.
func (c *Command) pubinit(fieldEqValues ...string) error {
	pub, err := publisher.New()
	if err != nil {
		return err
	}
	defer pub.Close()

	if hostname, err := os.Hostname(); err == nil {
		pub.Print("hostname: ", hostname)
	}
	if len(c.Machine) > 0 {
		pub.Print("machine: ", c.Machine)
	}

	for _, feqv := range fieldEqValues {
		var field, value string
		eq := strings.Index(feqv, "=")
		if eq == 0 {
			continue
		}
		if eq < 0 {
			field = feqv
		} else {
			field = feqv[:eq]
		}
		if eq < len(feqv)-1 {
			value = feqv[eq+1:]
		}
		pub.Print(field, ": ", value)
	}

	_, err = pub.Print("redis.ready: true")
	return err
}

func (redisd *Redisd) assign(key string, v interface{}) error {
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	redisd.assignments = redisd.assignments.insert(key, v)
	redisd.flushKeyCache()
	return nil
}

func (redisd *Redisd) unassign(key string) error {
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	if redisd.assignments.find(key) == nil {
		return fmt.Errorf("%s: not found", key)
	}
	redisd.assignments = redisd.assignments.delete(key)
	redisd.flushKeyCache()
	return nil
}

func (redisd *Redisd) flushKeyCache() {
	redisd.cachedKeys = redisd.cachedKeys[:0]
}

func (redisd *Redisd) flushSubkeyCache(key string) {
	if redisd.cachedSubkeys == nil {
		return
	}
	a, found := redisd.cachedSubkeys[key]
	if found {
		redisd.cachedSubkeys[key] = a[:0]
	}
}

func (redisd *Redisd) Hexists(key, field string) (int, error) {
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	hv, found := redisd.published[key]
	if !found {
		return 0, fmt.Errorf("%s: not found", key)
	}
	_, found = hv[field]
	if !found {
		return 0, fmt.Errorf("%s: not found in %s", field, key)
	}
	return 1, nil
}

// Hget returns the named field; a field that names nothing directly is
// retried as a regular expression over the hash and the matches returned
// as "FIELD: VALUE" lines.
func (redisd *Redisd) Hget(key, field string) ([]byte, error) {
	var keys []string

	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()

	hv, found := redisd.published[key]
	if !found {
		return nil, fmt.Errorf("%s: not found", key)
	}
	if len(field) == 0 {
		keys = make([]string, 0, len(hv))
		for k := range hv {
			keys = append(keys, k)
		}
	} else if b, found := hv[field]; found {
		return b, nil
	}
	if len(keys) == 0 {
		re, err := regexp.Compile(field)
		if err != nil {
			return nil, err
		}
		keys = make([]string, 0, len(hv))
		for k := range hv {
			if re.MatchString(k) {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("%s: not found in %s",
				field, key)
		}
	}
	sort.Strings(keys)
	b := make([]byte, 0, 4096)
	for i, k := range keys {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, []byte(k)...)
		b = append(b, []byte(": ")...)
		b = append(b, hv[k]...)
	}
	return b, nil
}

func (redisd *Redisd) Hgetall(key string) ([][]byte, error) {
	var bs [][]byte
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	hv, found := redisd.published[key]
	if !found {
		return bs, fmt.Errorf("%s: not found", key)
	}
	subkeys := redisd.subkeys(key, hv)
	bs = make([][]byte, 0, len(hv)*2)
	for _, k := range subkeys {
		bs = append(bs, []byte(k), hv[k])
	}
	return bs, nil
}

func (redisd *Redisd) Hkeys(key string) ([][]byte, error) {
	var bs [][]byte
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	hv, found := redisd.published[key]
	if !found {
		return bs, fmt.Errorf("%s: not found", key)
	}
	subkeys := redisd.subkeys(key, hv)
	bs = make([][]byte, len(subkeys))
	for i, k := range subkeys {
		bs[i] = []byte(k)
	}
	return bs, nil
}

// Hset delegates to the handler assigned to "KEY:FIELD", then "KEY";
// fields with no assigned handler are read-only.
func (redisd *Redisd) Hset(key, field string, value []byte) (int, error) {
	type t interface {
		Hset(string, string, []byte) (int, error)
	}
	f := func(key, field string, value []byte) (int, error) {
		return 0, fmt.Errorf("can't hset %s %s", key, field)
	}
	hashkey := fmt.Sprint(key, ":", field)
	redisd.mutex.Lock()
	if method, found := redisd.assignments.find(hashkey).(t); found {
		f = method.Hset
	} else if method, found := redisd.assignments.find(key).(t); found {
		f = method.Hset
	}
	redisd.mutex.Unlock()
	return f(key, field, value)
}

func (redisd *Redisd) Keys(pattern string) ([][]byte, error) {
	var re *regexp.Regexp
	var err error
	isMatch := func(k string) bool { return true }
	if len(pattern) > 0 && pattern != "*" {
		if strings.ContainsAny(pattern, "?*\\") {
			re, err = regexp.Compile(pattern)
			if err != nil {
				return nil, err
			}
			isMatch = func(k string) bool {
				return re.MatchString(k)
			}
		} else {
			isMatch = func(k string) bool {
				return k == pattern
			}
		}
	}
	keys := redisd.keys()
	reply := make([][]byte, 0, len(keys))
	seen := make(map[string]struct{})
	for _, k := range keys {
		if isMatch(k) {
			if _, found := seen[k]; !found {
				reply = append(reply, []byte(k))
				seen[k] = struct{}{}
			}
		}
	}
	return reply, nil
}

func (redisd *Redisd) keys() []string {
	redisd.mutex.Lock()
	defer redisd.mutex.Unlock()
	if len(redisd.cachedKeys) == 0 {
		for _, a := range redisd.assignments {
			k := a.prefix
			if i := strings.Index(k, ":"); i > 0 {
				k = k[:i]
			}
			redisd.cachedKeys = append(redisd.cachedKeys, k)
		}
		for k := range redisd.published {
			redisd.cachedKeys = append(redisd.cachedKeys, k)
		}
		sort.Strings(redisd.cachedKeys)
	}
	return redisd.cachedKeys
}

func (redisd *Redisd) Ping() (*grs.StatusReply, error) {
	return grs.NewStatusReply("PONG"), nil
}

func (redisd *Redisd) subkeys(key string, hv grs.HashValue) []string {
	if redisd.cachedSubkeys == nil {
		redisd.cachedSubkeys = make(map[string][]string)
	}
	subkeys, found := redisd.cachedSubkeys[key]
	if !found {
		subkeys = []string{}
	}
	if len(subkeys) != len(hv) {
		subkeys = subkeys[:0]
		for k := range hv {
			subkeys = append(subkeys, k)
		}
		sort.Strings(subkeys)
		redisd.cachedSubkeys[key] = subkeys
	}
	return subkeys
}

// assignments is kept in longest-prefix-first order so find returns the
// most specific handler.
type assignments []*assignment

type assignment struct {
	prefix string
	v      interface{}
}

func (as assignments) delete(key string) assignments {
	for i := range as {
		if strings.HasPrefix(key, as[i].prefix) {
			as = append(as[:i], as[i+1:]...)
			break
		}
	}
	return as
}

func (as assignments) find(key string) interface{} {
	for i := range as {
		if strings.HasPrefix(key, as[i].prefix) {
			return as[i].v
		}
	}
	return nil
}

func (as assignments) insert(prefix string, v interface{}) assignments {
	p := &assignment{prefix, v}
	for i, a := range as {
		ni := len(a.prefix)
		np := len(p.prefix)
		if np > ni || (np == ni && p.prefix < a.prefix) {
			return append(as[:i],
				append(assignments{p}, as[i:]...)...)
		}
	}
	return append(as, p)
}
