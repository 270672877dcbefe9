// Copyright 2024 Juca Crispim <juca@poraodojuca.net>

// This file is part of cgikit.

// cgikit is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// cgikit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with cgikit. If not, see <http://www.gnu.org/licenses/>.

package cgi

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	traceStart = "*** STACKTRACE - START ***"
	traceEnd   = "*** STACKTRACE - END ***"
)

type Frame struct {
	Func string
	File string
	Line int
}

type Goroutine struct {
	ID     int
	State  string
	Frames []Frame
}

// Stacks returns a snapshot of every live goroutine's call stack.
func Stacks() []Goroutine {
	return parseStacks(string(allStacks()))
}

// FullTrace renders the stacks of all goroutines, with the source line of
// each frame when the file can be read. Frames are listed outermost first,
// so the most recent call of each goroutine comes last.
func FullTrace() string {
	return formatTrace(Stacks(), sourceCache{})
}

func formatTrace(stacks []Goroutine, src sourceCache) string {
	var b strings.Builder
	b.WriteString("\n" + traceStart + "\n")
	for _, g := range stacks {
		fmt.Fprintf(&b, "\n# GoroutineID: %d\n", g.ID)
		for i := len(g.Frames) - 1; i >= 0; i-- {
			f := g.Frames[i]
			fmt.Fprintf(&b, "File: %q, line %d, in %s\n", f.File, f.Line, f.Func)
			if line := src.line(f.File, f.Line); line != "" {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}
	b.WriteString("\n" + traceEnd + "\n")
	return b.String()
}

func allStacks() []byte {
	buf := make([]byte, 64<<10)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

// parseStacks reads the text produced by runtime.Stack.
func parseStacks(dump string) []Goroutine {
	var stacks []Goroutine
	current := -1
	fn := ""
	for _, line := range strings.Split(dump, "\n") {
		switch {
		case strings.HasPrefix(line, "goroutine "):
			g, ok := parseGoroutineHeader(line)
			if !ok {
				current = -1
				continue
			}
			stacks = append(stacks, g)
			current = len(stacks) - 1
			fn = ""
		case strings.TrimSpace(line) == "":
			current = -1
			fn = ""
		case current < 0:
			continue
		case strings.HasPrefix(line, "\t"):
			if fn == "" {
				continue
			}
			file, lineno := parseLocation(line)
			stacks[current].Frames = append(stacks[current].Frames,
				Frame{Func: fn, File: file, Line: lineno})
			fn = ""
		case strings.HasPrefix(line, "..."):
			// frames elided by the runtime
			continue
		default:
			fn = funcName(line)
		}
	}
	return stacks
}

// "goroutine 7 [chan receive, 2 minutes]:"
func parseGoroutineHeader(line string) (Goroutine, bool) {
	rest := strings.TrimPrefix(line, "goroutine ")
	idStr, state, found := strings.Cut(rest, " ")
	if !found {
		return Goroutine{}, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return Goroutine{}, false
	}
	state = strings.TrimSuffix(state, ":")
	if start, end := strings.Index(state, "["), strings.LastIndex(state, "]"); start >= 0 && end > start {
		state = state[start+1 : end]
	}
	return Goroutine{ID: id, State: state}, true
}

// "\t/src/main.go:12 +0x1d"
func parseLocation(line string) (string, int) {
	loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	i := strings.LastIndex(loc, ":")
	if i < 0 {
		return loc, 0
	}
	n, err := strconv.Atoi(loc[i+1:])
	if err != nil {
		return loc, 0
	}
	return loc[:i], n
}

// funcName drops the argument list from "pkg.(*T).m(0x1, {0x2})" and the
// goroutine reference from "created by pkg.f in goroutine 1".
func funcName(line string) string {
	if strings.HasPrefix(line, "created by ") {
		name, _, _ := strings.Cut(line, " in goroutine ")
		return name
	}
	if !strings.HasSuffix(line, ")") {
		return line
	}
	depth := 0
	for i := len(line) - 1; i >= 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return line[:i]
			}
		}
	}
	return line
}

type sourceCache map[string][]string

func (c sourceCache) line(file string, n int) string {
	lines, ok := c[file]
	if !ok {
		lines = readLines(file)
		c[file] = lines
	}
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[n-1])
}

func readLines(file string) []string {
	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
