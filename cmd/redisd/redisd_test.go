// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package redisd

import (
	"reflect"
	"testing"

	grs "github.com/platinasystems/go-redis-server"
	"github.com/ipilcher/n5550-v2/external/redis"
)

type fakeHandler struct {
	keys   []string
	fields []string
	values []string
}

func (h *fakeHandler) Hset(key, field string, value []byte) (int, error) {
	h.keys = append(h.keys, key)
	h.fields = append(h.fields, field)
	h.values = append(h.values, string(value))
	return 1, nil
}

func TestPublish(t *testing.T) {
	defer func(s string) { redis.DefaultHash = s }(redis.DefaultHash)
	redis.DefaultHash = "thecus-n5550"

	redisd := &Redisd{published: grs.HashHash{
		redis.DefaultHash: make(grs.HashValue),
	}}

	redisd.publish([]byte("machine: thecus-n5550"))
	redisd.publish([]byte("other: n5550.state: LedsUp"))

	b, err := redisd.Hget(redis.DefaultHash, "machine")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "thecus-n5550" {
		t.Errorf("machine %q, want thecus-n5550", b)
	}
	b, err = redisd.Hget("other", "n5550.state")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "LedsUp" {
		t.Errorf("n5550.state %q, want LedsUp", b)
	}

	redisd.publish([]byte("n5550.state: Uninit"))
	redisd.publish([]byte("n5550.gpio.base: 64"))
	redisd.publish([]byte("delete: n5550."))
	if _, err = redisd.Hget(redis.DefaultHash, "n5550.state"); err == nil {
		t.Error("n5550. fields not deleted")
	}
	if _, err = redisd.Hget(redis.DefaultHash, "machine"); err != nil {
		t.Error("machine deleted with n5550. prefix:", err)
	}
}

func TestHkeysSorted(t *testing.T) {
	redisd := &Redisd{published: grs.HashHash{
		"h": grs.HashValue{
			"led.usb":  []byte("off"),
			"led.busy": []byte("off"),
			"machine":  []byte("thecus-n5550"),
		},
	}}
	bs, err := redisd.Hkeys("h")
	if err != nil {
		t.Fatal(err)
	}
	keys := make([]string, len(bs))
	for i, b := range bs {
		keys[i] = string(b)
	}
	want := []string{"led.busy", "led.usb", "machine"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys %v, want %v", keys, want)
	}
}

func TestHgetPattern(t *testing.T) {
	redisd := &Redisd{published: grs.HashHash{
		"h": grs.HashValue{
			"led.busy": []byte("on"),
			"led.fail": []byte("off"),
			"machine":  []byte("thecus-n5550"),
		},
	}}
	b, err := redisd.Hget("h", "led.*")
	if err != nil {
		t.Fatal(err)
	}
	want := "led.busy: on\nled.fail: off"
	if string(b) != want {
		t.Errorf("got %q, want %q", b, want)
	}
}

func TestHsetDispatch(t *testing.T) {
	redisd := &Redisd{published: grs.HashHash{
		"h": make(grs.HashValue),
	}}
	h := &fakeHandler{}
	if err := redisd.assign("h:led.", h); err != nil {
		t.Fatal(err)
	}

	i, err := redisd.Hset("h", "led.busy", []byte("true"))
	if err != nil {
		t.Fatal(err)
	}
	if i != 1 {
		t.Errorf("reply %d, want 1", i)
	}
	if !reflect.DeepEqual(h.fields, []string{"led.busy"}) {
		t.Errorf("handler got fields %v", h.fields)
	}

	if _, err = redisd.Hset("h", "n5550.state", nil); err == nil {
		t.Error("hset of unassigned field didn't err")
	}

	if err = redisd.unassign("h:led."); err != nil {
		t.Fatal(err)
	}
	if _, err = redisd.Hset("h", "led.busy", []byte("true")); err == nil {
		t.Error("hset after unassign didn't err")
	}
	if err = redisd.unassign("h:led."); err == nil {
		t.Error("second unassign didn't err")
	}
}

func TestAssignmentsOrder(t *testing.T) {
	var as assignments
	for _, prefix := range []string{"h", "h:led.", "h:n5550."} {
		p := prefix
		as = as.insert(p, p)
	}
	got := make([]string, len(as))
	for i, a := range as {
		got[i] = a.prefix
	}
	want := []string{"h:n5550.", "h:led.", "h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order %v, want %v", got, want)
	}
	if v := as.find("h:led.busy"); v != "h:led." {
		t.Errorf("find h:led.busy: %v, want h:led.", v)
	}
	if v := as.find("h:uptime"); v != "h" {
		t.Errorf("find h:uptime: %v, want h", v)
	}
	as = as.delete("h:led.busy")
	if v := as.find("h:led.busy"); v != "h" {
		t.Errorf("find after delete: %v, want h", v)
	}
}

func TestKeys(t *testing.T) {
	redisd := &Redisd{published: grs.HashHash{
		"h": make(grs.HashValue),
	}}
	redisd.assign("h:led.", &fakeHandler{})
	for _, x := range []struct {
		pattern string
		want    []string
	}{
		{"", []string{"h"}},
		{"*", []string{"h"}},
		{"h", []string{"h"}},
		{"x", []string{}},
	} {
		bs, err := redisd.Keys(x.pattern)
		if err != nil {
			t.Fatal(err)
		}
		keys := make([]string, 0, len(bs))
		for _, b := range bs {
			keys = append(keys, string(b))
		}
		if !reflect.DeepEqual(keys, x.want) {
			t.Errorf("keys(%q) %v, want %v",
				x.pattern, keys, x.want)
		}
	}
}
