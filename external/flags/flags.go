// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package flags

import "strings"

type Flags struct {
	ByName  ByName
	aliases Aliases
}

type ByName map[string]bool
type Aliases map[string]string

// Define and parse boolean flags from command arguments, e.g.
//
//	flag, args := flags.New([]string{"-r", "something"}, "-r", "-w")
//
// results in
//
//	flag.ByName["-r"] == true
//	flag.ByName["-w"] == false
//	args == []string{"something"}
//
// Flags may be defined with strings or string slices that include aliases
// of the first entry, e.g.
//
//	flag, args := flags.New(args, "-r", []string{"-w", "-write"})
func New(args []string, flags ...interface{}) (*Flags, []string) {
	f := &Flags{
		ByName:  make(ByName),
		aliases: make(Aliases),
	}
	if len(flags) > 0 {
		args = f.More(args, flags...)
	}
	return f, args
}

// Define and parse more flags from command arguments.
func (f *Flags) More(args []string, flags ...interface{}) []string {
	for _, v := range flags {
		switch t := v.(type) {
		case string:
			f.ByName[t] = false
		case []string:
			f.ByName[t[0]] = false
			for _, aka := range t[1:] {
				f.aliases[aka] = t[0]
			}
		}
	}
	return f.Parse(args)
}

// Aka aliases each of the given names to the first.
func (f *Flags) Aka(name string, akas ...string) {
	for _, aka := range akas {
		f.aliases[aka] = name
	}
}

// Parse predefined flags from command arguments.
func (f *Flags) Parse(args []string) []string {
	for i := 0; i < len(args); {
		k, found := f.aliases[args[i]]
		if !found {
			k = args[i]
		}
		if _, found = f.ByName[k]; found {
			f.ByName[k] = true
			if i < len(args)-1 {
				copy(args[i:], args[i+1:])
			}
			args = args[:len(args)-1]
		} else {
			i++
		}
	}
	return args
}

// Keys returns the defined flag names.
func (f *Flags) Keys() []string {
	keys := make([]string, 0, len(f.ByName))
	for k := range f.ByName {
		keys = append(keys, k)
	}
	return keys
}

// Flags returns the set flag names.
func (f *Flags) Flags() []string {
	flags := make([]string, 0, len(f.ByName))
	for k, set := range f.ByName {
		if set {
			flags = append(flags, k)
		}
	}
	return flags
}

// String lists the set flags.
func (f *Flags) String() string {
	return strings.Join(f.Flags(), " ")
}
