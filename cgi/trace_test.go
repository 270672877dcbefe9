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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `goroutine 1 [running]:
main.main()
	/src/app/main.go:12 +0x1d

goroutine 7 [chan receive, 2 minutes]:
github.com/x/y.(*Worker).loop(0xc000010000, {0x1, 0x2})
	/src/y/worker.go:40 +0x65
created by github.com/x/y.Start in goroutine 1
	/src/y/worker.go:22 +0x98

goroutine 9 [select]:
...additional frames elided...
net/http.(*conn).serve(0xc0001)
	/usr/lib/go/src/net/http/server.go:2039 +0x1a4
`

func TestParseStacks(t *testing.T) {
	stacks := parseStacks(sampleDump)
	require.Len(t, stacks, 3)

	assert.Equal(t, Goroutine{
		ID:     1,
		State:  "running",
		Frames: []Frame{{Func: "main.main", File: "/src/app/main.go", Line: 12}},
	}, stacks[0])

	assert.Equal(t, Goroutine{
		ID:    7,
		State: "chan receive, 2 minutes",
		Frames: []Frame{
			{Func: "github.com/x/y.(*Worker).loop", File: "/src/y/worker.go", Line: 40},
			{Func: "created by github.com/x/y.Start", File: "/src/y/worker.go", Line: 22},
		},
	}, stacks[1])

	assert.Equal(t, 9, stacks[2].ID)
	assert.Equal(t, []Frame{
		{Func: "net/http.(*conn).serve", File: "/usr/lib/go/src/net/http/server.go", Line: 2039},
	}, stacks[2].Frames)
}

func TestFuncName(t *testing.T) {
	var tests = []struct {
		line     string
		expected string
	}{
		{"main.main()", "main.main"},
		{"pkg.f(0x1, {0x2, 0x3})", "pkg.f"},
		{"pkg.(*T).m(...)", "pkg.(*T).m"},
		{"created by pkg.g in goroutine 3", "created by pkg.g"},
		{"panic({0x4a, 0x5b})", "panic"},
	}

	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			assert.Equal(t, test.expected, funcName(test.line))
		})
	}
}

func TestFormatTraceOutermostFirst(t *testing.T) {
	src := sourceCache{
		"/src/app/main.go":                   nil,
		"/src/y/worker.go":                   {"package y", "", "func Start() {"},
		"/usr/lib/go/src/net/http/server.go": nil,
	}
	trace := formatTrace(parseStacks(sampleDump), src)

	expected := "\n*** STACKTRACE - START ***\n" +
		"\n# GoroutineID: 1\n" +
		"File: \"/src/app/main.go\", line 12, in main.main\n" +
		"\n# GoroutineID: 7\n" +
		"File: \"/src/y/worker.go\", line 22, in created by github.com/x/y.Start\n" +
		"File: \"/src/y/worker.go\", line 40, in github.com/x/y.(*Worker).loop\n" +
		"\n# GoroutineID: 9\n" +
		"File: \"/usr/lib/go/src/net/http/server.go\", line 2039, in net/http.(*conn).serve\n" +
		"\n*** STACKTRACE - END ***\n"
	assert.Equal(t, expected, trace)
}

func TestFullTrace(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		<-done
	}()

	trace := FullTrace()
	assert.True(t, strings.HasPrefix(trace, "\n*** STACKTRACE - START ***\n"))
	assert.True(t, strings.HasSuffix(trace, "\n*** STACKTRACE - END ***\n"))
	assert.Contains(t, trace, "# GoroutineID: ")
	assert.Contains(t, trace, "in github.com/jucacrispim/cgikit/cgi.TestFullTrace")
	// the source of this file is readable, so the calling line shows up
	assert.Contains(t, trace, "trace := FullTrace()")
	// the test runner calls the test, so it is listed before it
	runner := strings.Index(trace, "in testing.tRunner")
	caller := strings.Index(trace, "in github.com/jucacrispim/cgikit/cgi.TestFullTrace")
	assert.True(t, runner >= 0 && runner < caller)
	assert.GreaterOrEqual(t, strings.Count(trace, "# GoroutineID: "), 2)
}

func TestStacksIncludesCaller(t *testing.T) {
	found := false
	for _, g := range Stacks() {
		for _, f := range g.Frames {
			if strings.HasSuffix(f.Func, "TestStacksIncludesCaller") {
				found = true
				assert.True(t, strings.HasSuffix(f.File, "trace_test.go"))
				assert.Positive(t, f.Line)
			}
		}
	}
	assert.True(t, found)
}
