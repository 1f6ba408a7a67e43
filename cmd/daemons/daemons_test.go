// Copyright 2016-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package daemons

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDaemonLog(t *testing.T) {
	var dl daemonLog
	dl.init()

	dl.Write([]byte("<31>first line\n"))
	dl.Write([]byte("second line\n"))

	s := dl.String()
	if !strings.Contains(s, "first line") ||
		strings.Contains(s, "<31>") {
		t.Errorf("priority prefix not stripped: %q", s)
	}
	i := strings.Index(s, "first line")
	j := strings.Index(s, "second line")
	if i < 0 || j < 0 || j < i {
		t.Errorf("lines out of order: %q", s)
	}
}

func TestDaemonLogWrap(t *testing.T) {
	var dl daemonLog
	dl.init()

	for i := 0; i < logEntries; i++ {
		dl.Write([]byte("old\n"))
	}
	dl.Write([]byte("newest\n"))

	s := dl.String()
	if !strings.HasSuffix(strings.TrimRight(s, "\n"), "newest") {
		t.Errorf("ring didn't wrap oldest first: ...%q",
			s[len(s)-40:])
	}
}

func TestDaemonLogTruncate(t *testing.T) {
	var dl daemonLog
	dl.init()

	long := strings.Repeat("x", logCap*2) + "\n"
	dl.Write([]byte(long))
	if s := dl.String(); !strings.Contains(s, "...") {
		t.Errorf("long line not elided: %q", s)
	}
}

func TestPids(t *testing.T) {
	got, err := pids([]string{"12", "345"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{12, 345}; !reflect.DeepEqual(got, want) {
		t.Errorf("pids %v, want %v", got, want)
	}
	if _, err = pids([]string{"x"}); err == nil {
		t.Error("non-numeric pid didn't err")
	}
}

func TestReversePids(t *testing.T) {
	d := &Daemons{pids: []int{1, 2, 3}}
	if got := d.reversePids(); !reflect.DeepEqual(got, []int{3, 2, 1}) {
		t.Errorf("reversed %v", got)
	}
}

func TestRestartDelay(t *testing.T) {
	if d := restartDelay.ForAttempt(0); d != restartDelay.Min {
		t.Errorf("first delay %v, want %v", d, restartDelay.Min)
	}
	prev := time.Duration(0)
	for i := 0; i <= restartLimit; i++ {
		d := restartDelay.ForAttempt(float64(i))
		if d < prev {
			t.Errorf("delay shrank at attempt %d: %v < %v",
				i, d, prev)
		}
		if d > restartDelay.Max {
			t.Errorf("delay over max at attempt %d: %v", i, d)
		}
		prev = d
	}
}
