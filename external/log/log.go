// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package log prints messages to a given writer, /dev/log, /dev/kmsg, or a
// byte buffer until one of these are available.
package log

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/syslog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const DevKmsg = "/dev/kmsg"
const DevLog = "/dev/log"

type teeT struct {
	sync.Mutex
	w io.Writer

	exclusive bool
}

type earlyT struct {
	sync.Mutex
	buf *bytes.Buffer
}

var (
	tee   teeT
	early = earlyT{buf: &bytes.Buffer{}}
)

var PriorityByName = map[string]syslog.Priority{
	"emerg": syslog.LOG_EMERG,
	"alert": syslog.LOG_ALERT,
	"crit":  syslog.LOG_CRIT,
	"err":   syslog.LOG_ERR,
	"warn":  syslog.LOG_WARNING,
	"note":  syslog.LOG_NOTICE,
	"info":  syslog.LOG_INFO,
	"debug": syslog.LOG_DEBUG,
}

var FacilityByName = map[string]syslog.Priority{
	"kern":   syslog.LOG_KERN,
	"user":   syslog.LOG_USER,
	"mail":   syslog.LOG_MAIL,
	"daemon": syslog.LOG_DAEMON,
	"auth":   syslog.LOG_AUTH,
	"syslog": syslog.LOG_SYSLOG,
	"lpr":    syslog.LOG_LPR,
	"news":   syslog.LOG_NEWS,
	"uucp":   syslog.LOG_UUCP,
	"cron":   syslog.LOG_CRON,
	"priv":   syslog.LOG_AUTHPRIV,
	"ftp":    syslog.LOG_FTP,
	"local0": syslog.LOG_LOCAL0,
	"local1": syslog.LOG_LOCAL1,
	"local2": syslog.LOG_LOCAL2,
	"local3": syslog.LOG_LOCAL3,
	"local4": syslog.LOG_LOCAL4,
	"local5": syslog.LOG_LOCAL5,
	"local6": syslog.LOG_LOCAL6,
	"local7": syslog.LOG_LOCAL7,
}

// Tee logged lines to Writer
func Tee(w io.Writer) { tee.w = w }

// LinesFrom logs lines from the given reader until EOF or error.
func LinesFrom(rc io.ReadCloser, id, priority string) {
	defer rc.Close()
	pri, found := PriorityByName[priority]
	if !found {
		pri = syslog.LOG_ERR
	}
	scan := bufio.NewScanner(rc)
	for scan.Scan() {
		log(pri|syslog.LOG_DAEMON, id, scan.Text())
	}
}

// The default level is: Debug, User. Upto the first two arguments may change
// this by name; e.g.
//
//	Print("daemon", ...)
//	Print("daemon", "err", ...)
//	Print("err", ...)
func Print(args ...interface{}) {
	pri, fac, a := logArgs(args...)
	log(pri|fac, id(), fmt.Sprint(a...))
}

// The default level is: Debug, User. Upto the first two arguments may preceed
// the log format string to change the priority and facility like this:
//
//	Printf("daemon", format, ...)
//	Printf("daemon", "err", format, ...)
//	Printf("err", format, ...)
func Printf(args ...interface{}) {
	pri, fac, a := logArgs(args...)
	if len(a) <= 0 {
		// missing format
		return
	}
	format, ok := a[0].(string)
	if !ok {
		// a[0]: isn't string
		return
	}
	a = a[1:]
	log(pri|fac, id(), fmt.Sprintf(format, a...))
}

var cache struct {
	once sync.Once
	id   string
	pid  int
}

func id() string {
	cache.once.Do(func() {
		var prog string
		s, err := os.Readlink("/proc/self/exe")
		if err == nil {
			prog = filepath.Base(s)
			if s != os.Args[0] {
				if strings.HasPrefix(os.Args[0], prog) {
					prog = os.Args[0]
				} else {
					prog += "." + os.Args[0]
				}
			}
		} else {
			prog = filepath.Base(os.Args[0])
		}
		if cache.pid == 0 {
			cache.pid = os.Getpid()
		}
		cache.id = fmt.Sprintf("%s[%d]", prog, cache.pid)
	})
	return cache.id
}

func logArgs(args ...interface{}) (pri, fac syslog.Priority, a []interface{}) {
	pri = syslog.LOG_DEBUG
	fac = syslog.LOG_USER
	a = args
	for i := 0; len(a) > 0 && i < 2; i++ {
		s, ok := a[0].(string)
		if !ok {
			break
		}
		if v, found := PriorityByName[s]; found {
			pri = v
			a = a[1:]
			continue
		}
		if v, found := FacilityByName[s]; found {
			fac = v
			a = a[1:]
		}
	}
	return
}

func log(pri syslog.Priority, id string, args ...interface{}) {
	lines := strings.Split(fmt.Sprint(args...), "\n")
	if tee.w != nil {
		tee.log(pri, id, lines)
		if tee.exclusive {
			return
		}
	}
	if _, err := os.Stat(DevLog); err == nil {
		conn, err := net.Dial("unixgram", DevLog)
		if err != nil {
			// FIXME how to log a log error?
			return
		}
		defer conn.Close()
		for _, s := range lines {
			fmt.Fprintf(conn, "<%d>%s %s: %s\n",
				pri, time.Now().Format(time.Stamp),
				id, s)
		}
	} else if k, err := os.OpenFile(DevKmsg, os.O_RDWR, 0644); err == nil {
		defer k.Close()
		early.flush(k)
		for _, s := range lines {
			fmt.Fprintf(k, "<%d>%s: %s\n", pri, id, s)
		}
	} else if os.IsNotExist(err) {
		early.log(pri, id, lines)
	}
}

func (p *teeT) log(pri syslog.Priority, id string, lines []string) {
	p.Lock()
	defer p.Unlock()
	for _, s := range lines {
		fmt.Fprintf(p.w, "<%d>%s: %s\n", pri, id, s)
	}
}

func (p *earlyT) log(pri syslog.Priority, id string, lines []string) {
	p.Lock()
	defer p.Unlock()
	for _, s := range lines {
		fmt.Fprintf(p.buf, "<%d>%s: %s\n", pri, id, s)
	}
}

func (p *earlyT) flush(w io.Writer) {
	p.Lock()
	defer p.Unlock()
	if p.buf.Len() == 0 {
		return
	}
	w.Write(p.buf.Bytes())
	p.buf.Reset()
}
